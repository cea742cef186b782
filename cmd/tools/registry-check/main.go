// cmd/tools/registry-check/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"vc-assistant/internal/common/config"
	"vc-assistant/internal/common/validation"
	"vc-assistant/pkg/registry"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validatePath := validateCmd.String("path", "configs/activity-registry.json", "Path to registry file")
	configPath := validateCmd.String("config", "configs/config.yaml", "Path to worker config")

	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	updatePath := updateCmd.String("path", "configs/activity-registry.json", "Path to registry file")
	taskType := updateCmd.String("taskType", "", "Task type to update")
	field := updateCmd.String("field", "", "Field to update (description, timeout, retries)")
	value := updateCmd.String("value", "", "New value for the field")

	if len(os.Args) < 2 {
		help(os.Stdout)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(*validatePath)
		if err != nil {
			fmt.Printf("Error loading registry: %v\n", err)
			os.Exit(1)
		}
		cfg, err := config.LoadFromFile(*configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		problems := checkRegistry(reg, cfg)
		for _, p := range problems {
			fmt.Println("  -", p)
		}
		if len(problems) > 0 {
			fmt.Printf("Registry validation failed with %d problem(s).\n", len(problems))
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *taskType == "" || *field == "" || *value == "" {
			fmt.Println("Error: taskType, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateActivity(*updatePath, *taskType, *field, *value); err != nil {
			fmt.Printf("Error updating activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated %s: %s = %s\n", *taskType, *field, *value)

	default:
		help(os.Stdout)
	}
}

// checkRegistry compiles every input schema and cross-checks the registry
// against the configured workers.
func checkRegistry(reg *registry.ActivityRegistry, cfg *config.Config) []string {
	var problems []string

	if _, err := validation.NewSchemaValidator(reg); err != nil {
		problems = append(problems, err.Error())
	}

	for _, a := range reg.Activities {
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				problems = append(problems, fmt.Sprintf("%s: invalid timeout %q", a.TaskType, a.Timeout))
			}
		}
		if len(a.ErrorCodes) == 0 {
			problems = append(problems, fmt.Sprintf("%s: no error codes declared", a.TaskType))
		}
	}

	taskTypes := make([]string, 0, len(cfg.Workers))
	for taskType := range cfg.Workers {
		taskTypes = append(taskTypes, taskType)
	}
	sort.Strings(taskTypes)
	for _, taskType := range taskTypes {
		if _, ok := reg.Lookup(taskType); !ok {
			problems = append(problems, fmt.Sprintf("%s: configured worker has no registry entry", taskType))
		}
	}
	return problems
}

func updateActivity(path, taskType, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	idx := -1
	for i := range reg.Activities {
		if reg.Activities[i].TaskType == taskType {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("activity with taskType %s not found", taskType)
	}

	a := &reg.Activities[idx]
	switch field {
	case "description":
		a.Description = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		a.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func help(w io.Writer) {
	fmt.Fprintln(w, `
Usage: registry-check <command> [flags]

Commands:
  validate  Compile input schemas and match the registry against configured workers
  update    Update an activity's description, timeout or retries

Examples:
  registry-check validate -path configs/activity-registry.json -config configs/config.yaml
  registry-check update -taskType classify-email -field timeout -value 45s`)
}
