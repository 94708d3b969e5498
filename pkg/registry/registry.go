// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes the registry with a fresh lastUpdated stamp.
func (r *ActivityRegistry) Save(path string) error {
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Find returns the activity with the given id or task type.
func (r *ActivityRegistry) Find(idOrTaskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].ID == idOrTaskType || r.Activities[i].TaskType == idOrTaskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Add appends an activity. Ids and task types must stay unique.
func (r *ActivityRegistry) Add(a Activity) error {
	if _, ok := r.Find(a.ID); ok {
		return fmt.Errorf("activity %s already exists", a.ID)
	}
	if _, ok := r.Find(a.TaskType); ok {
		return fmt.Errorf("task type %s already registered", a.TaskType)
	}
	r.Activities = append(r.Activities, a)
	return nil
}

// SetField updates one scalar field of an activity.
func (r *ActivityRegistry) SetField(id, field, value string) error {
	a, ok := r.Find(id)
	if !ok {
		return fmt.Errorf("activity %s not found", id)
	}

	switch field {
	case "status":
		if !validStatuses[value] {
			return fmt.Errorf("invalid status %q", value)
		}
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", value, err)
		}
		a.Timeout = value
	case "description":
		a.Description = value
	default:
		return fmt.Errorf("unsupported field %q", field)
	}
	return nil
}

// Validate reports every structural problem in the registry at once.
func (r *ActivityRegistry) Validate() error {
	var problems []string
	ids := make(map[string]bool, len(r.Activities))
	taskTypes := make(map[string]bool, len(r.Activities))

	for i, a := range r.Activities {
		label := a.ID
		if label == "" {
			label = fmt.Sprintf("activities[%d]", i)
			problems = append(problems, label+": id is required")
		}
		if a.TaskType == "" {
			problems = append(problems, label+": taskType is required")
		}
		if ids[a.ID] {
			problems = append(problems, label+": duplicate id")
		}
		if a.TaskType != "" && taskTypes[a.TaskType] {
			problems = append(problems, label+": duplicate taskType "+a.TaskType)
		}
		if !validStatuses[a.ImplementationStatus] {
			problems = append(problems, fmt.Sprintf("%s: invalid implementationStatus %q", label, a.ImplementationStatus))
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				problems = append(problems, fmt.Sprintf("%s: invalid timeout %q", label, a.Timeout))
			}
		}
		ids[a.ID] = true
		taskTypes[a.TaskType] = true
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Missing returns the task types that have no registry entry.
func (r *ActivityRegistry) Missing(taskTypes ...string) []string {
	var missing []string
	for _, t := range taskTypes {
		if _, ok := r.Find(t); !ok {
			missing = append(missing, t)
		}
	}
	return missing
}
