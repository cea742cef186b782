// internal/workers/deals/reconcile-deal/parse.go
package reconciledeal

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
)

var (
	checkSizePattern = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(m|million|k|thousand)?`)
	displayName      = regexp.MustCompile(`^([^<]+)<`)
	localPartSep     = strings.NewReplacer(".", " ", "_", " ")
)

// ParseCheckSize reads amounts like "$2M", "1.5 million" or "500k". Strings
// without a number yield 0.
func ParseCheckSize(askAmount string) float64 {
	m := checkSizePattern.FindStringSubmatch(askAmount)
	if m == nil {
		return 0
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch strings.ToLower(m[2]) {
	case "m", "million":
		return amount * 1_000_000
	case "k", "thousand":
		return amount * 1_000
	}
	return amount
}

// ExtractEmailName returns the display name of "Jane Doe <jane@acme.io>",
// or the local part with dots and underscores turned into spaces.
func ExtractEmailName(sender string) string {
	if m := displayName.FindStringSubmatch(sender); m != nil {
		return strings.TrimSpace(m[1])
	}
	local, _, _ := strings.Cut(sender, "@")
	return localPartSep.Replace(local)
}

// EmailAddress strips any display name from sender.
func EmailAddress(sender string) string {
	if addr, err := mail.ParseAddress(sender); err == nil {
		return addr.Address
	}
	return strings.TrimSpace(sender)
}
