// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &reg, nil
}

// Find returns the activity registered for taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// TaskTypes returns the registered task types, sorted.
func (r *ActivityRegistry) TaskTypes() []string {
	out := make([]string, 0, len(r.Activities))
	for _, a := range r.Activities {
		out = append(out, a.TaskType)
	}
	sort.Strings(out)
	return out
}

// Check reports structural problems: missing ids or task types, duplicates, missing input
// schemas, unknown statuses and unparsable timeouts.
func (r *ActivityRegistry) Check() []string {
	var problems []string
	ids := map[string]bool{}
	types := map[string]bool{}
	for i, a := range r.Activities {
		switch {
		case a.ID == "":
			problems = append(problems, fmt.Sprintf("activity %d: missing id", i))
		case ids[a.ID]:
			problems = append(problems, fmt.Sprintf("activity %s: duplicate id", a.ID))
		}
		ids[a.ID] = true

		switch {
		case a.TaskType == "":
			problems = append(problems, fmt.Sprintf("activity %s: missing taskType", a.ID))
		case types[a.TaskType]:
			problems = append(problems, fmt.Sprintf("activity %s: duplicate taskType %s", a.ID, a.TaskType))
		}
		types[a.TaskType] = true

		if len(a.InputSchema) == 0 {
			problems = append(problems, fmt.Sprintf("activity %s: missing inputSchema", a.ID))
		}
		if a.ImplementationStatus != "" && !knownStatuses[a.ImplementationStatus] {
			problems = append(problems, fmt.Sprintf("activity %s: unknown implementationStatus %q", a.ID, a.ImplementationStatus))
		}
		if _, err := a.TimeoutDuration(); err != nil {
			problems = append(problems, fmt.Sprintf("activity %s: invalid timeout %q", a.ID, a.Timeout))
		}
	}
	return problems
}

// Update sets one field of the activity with the given id and stamps LastUpdated.
func (r *ActivityRegistry) Update(id, field, value string) error {
	var a *Activity
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			a = &r.Activities[i]
			break
		}
	}
	if a == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		if !knownStatuses[value] {
			return fmt.Errorf("unknown status: %s", value)
		}
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "displayName":
		a.DisplayName = value
	case "description":
		a.Description = value
	case "category":
		a.Category = value
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

	r.LastUpdated = time.Now().Format("2006-01-02")
	return nil
}

func (r *ActivityRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
