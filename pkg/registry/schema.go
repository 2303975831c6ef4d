// pkg/registry/schema.go
package registry

import "time"

// Implementation states an activity can be in.
const (
	StatusPlanned    = "planned"
	StatusActive     = "active"
	StatusDeprecated = "deprecated"
)

var knownStatuses = map[string]bool{StatusPlanned: true, StatusActive: true, StatusDeprecated: true}

// ActivityRegistry lists the task types this service implements and their variable contracts.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Tags                 []string               `json:"tags"`
}

// TimeoutDuration parses Timeout; an empty timeout is zero.
func (a Activity) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(a.Timeout)
}

// Active reports whether workers should be started for the activity.
func (a Activity) Active() bool {
	return a.ImplementationStatus == StatusActive
}
