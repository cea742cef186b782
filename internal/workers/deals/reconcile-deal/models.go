// internal/workers/deals/reconcile-deal/models.go
package reconciledeal

import "vc-assistant/internal/models"

type Input struct {
	CompanyName   string               `json:"companyName"`
	ExtractedData models.ExtractedData `json:"extractedData"`
	SenderEmail   string               `json:"senderEmail"`
	EmailID       string               `json:"emailId"`
}

type Output struct {
	Deal    *models.Deal `json:"deal"`
	Created bool         `json:"created"`
}
