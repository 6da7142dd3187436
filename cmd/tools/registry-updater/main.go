// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dogwalk-workers/internal/common/validation"
	"dogwalk-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	switch command {
	case "add":
		addCmd := flag.NewFlagSet("add", flag.ExitOnError)
		path := addCmd.String("path", defaultRegistryPath, "Path to registry file")
		id := addCmd.String("id", "", "Activity ID (e.g., matching.walkers.find)")
		displayName := addCmd.String("displayName", "", "Display Name (e.g., Find Compatible Walkers)")
		description := addCmd.String("description", "", "Description")
		category := addCmd.String("category", "", "Category (e.g., matching)")
		taskType := addCmd.String("taskType", "", "Zeebe job type (e.g., find-compatible-walkers)")
		version := addCmd.String("version", "1.0.0", "Version")
		implStatus := addCmd.String("status", "planned", "Implementation Status (planned, in-progress, completed, verified)")
		addCmd.Parse(args)

		if *id == "" || *displayName == "" || *description == "" || *category == "" || *taskType == "" {
			addCmd.Usage()
			return fmt.Errorf("id, displayName, description, category, and taskType are required for add")
		}
		activity := registry.Activity{
			ID:                   *id,
			DisplayName:          *displayName,
			Description:          *description,
			Category:             *category,
			Version:              *version,
			TaskType:             *taskType,
			ImplementationStatus: *implStatus,
			InputSchema:          map[string]interface{}{},
			OutputSchema:         map[string]interface{}{},
			ErrorCodes:           []string{},
			Timeout:              "10s",
			Workflows:            []string{},
			Tags:                 []string{},
		}
		if err := addActivity(*path, activity); err != nil {
			return fmt.Errorf("adding activity: %w", err)
		}
		fmt.Printf("Added activity: %s\n", *id)

	case "update":
		updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
		path := updateCmd.String("path", defaultRegistryPath, "Path to registry file")
		id := updateCmd.String("id", "", "Activity ID to update")
		field := updateCmd.String("field", "", "Field to update (status, version, etc.)")
		value := updateCmd.String("value", "", "New value for the field")
		updateCmd.Parse(args)

		if *id == "" || *field == "" || *value == "" {
			updateCmd.Usage()
			return fmt.Errorf("id, field, and value are required for update")
		}
		if err := updateActivity(*path, *id, *field, *value); err != nil {
			return fmt.Errorf("updating activity: %w", err)
		}
		fmt.Printf("Updated activity %s, field %s to %s\n", *id, *field, *value)

	case "validate":
		validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
		path := validateCmd.String("path", defaultRegistryPath, "Path to registry file")
		validateCmd.Parse(args)

		count, err := validateRegistry(*path)
		if err != nil {
			return fmt.Errorf("registry validation failed: %w", err)
		}
		fmt.Printf("Registry validation passed. Found %d activities.\n", count)

	case "check":
		checkCmd := flag.NewFlagSet("check", flag.ExitOnError)
		path := checkCmd.String("path", defaultRegistryPath, "Path to registry file")
		taskType := checkCmd.String("task", "", "Zeebe job type whose input schema to check against")
		varsFile := checkCmd.String("vars", "", "JSON file with the job variables")
		checkCmd.Parse(args)

		if *taskType == "" || *varsFile == "" {
			checkCmd.Usage()
			return fmt.Errorf("task and vars are required for check")
		}
		if err := checkVariables(*path, *taskType, *varsFile); err != nil {
			return err
		}
		fmt.Printf("Variables in %s satisfy the %s input schema\n", *varsFile, *taskType)

	case "init":
		initCmd := flag.NewFlagSet("init", flag.ExitOnError)
		path := initCmd.String("path", defaultRegistryPath, "Path to registry file")
		initCmd.Parse(args)

		if err := registry.Save(registry.Builtin(), *path); err != nil {
			return err
		}
		fmt.Printf("Wrote built-in registry to %s\n", *path)

	default:
		help()
	}
	return nil
}

func addActivity(path string, activity registry.Activity) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{Version: "1.0.0"}
	}

	for _, existing := range reg.Activities {
		if existing.ID == activity.ID {
			return fmt.Errorf("activity with ID %s already exists", activity.ID)
		}
	}

	reg.Activities = append(reg.Activities, activity)
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return registry.Save(reg, path)
}

func updateActivity(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	var activity *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == id {
			activity = &reg.Activities[i]
			break
		}
	}
	if activity == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		activity.ImplementationStatus = value
	case "version":
		activity.Version = value
	case "displayName":
		activity.DisplayName = value
	case "description":
		activity.Description = value
	case "category":
		activity.Category = value
	case "taskType":
		activity.TaskType = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		activity.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		activity.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return registry.Save(reg, path)
}

func validateRegistry(path string) (int, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return 0, fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return 0, err
	}
	return len(reg.Activities), nil
}

// checkVariables validates a variables document against the input schema of
// the activity registered for taskType.
func checkVariables(path, taskType, varsFile string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	activity, ok := reg.FindByTaskType(taskType)
	if !ok {
		return fmt.Errorf("no activity registered for task type %s", taskType)
	}

	raw, err := os.ReadFile(varsFile)
	if err != nil {
		return fmt.Errorf("failed to read variables: %w", err)
	}
	var vars map[string]interface{}
	if err := json.Unmarshal(raw, &vars); err != nil {
		return fmt.Errorf("variables are not a JSON object: %w", err)
	}

	result, err := validation.ValidateInput(vars, activity.InputSchema)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("input schema violations: %s", strings.Join(result.GetErrorMessages(), "; "))
	}
	return nil
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  init     Write the built-in matching activities to the registry file
  add      Add a new activity to the registry
  update   Update an existing activity's field
  validate Validate the registry file, including its JSON schemas
  check    Check a job variables file against an activity's input schema
  help     Show this help message

Examples:
  registry-updater init -path configs/activity-registry.json
  registry-updater add -id matching.walkers.notify -displayName "Notify Walkers" -description "Notifies shortlisted walkers" -category matching -taskType notify-walkers
  registry-updater update -id matching.walkers.find -field timeout -value 20s
  registry-updater validate -path configs/activity-registry.json
  registry-updater check -task assign-walker -vars variables.json

Use 'registry-updater <command> -h' for more information about a command.
`)
}
