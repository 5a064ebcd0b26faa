package jenkins

// DTOs round-tripped from the server's loosely-typed JSON. Every field
// extraction tolerates absence or a wrong-typed value; callers must treat
// zero values as unset, not as errors.

// JobKind classifies a listing entry.
type JobKind string

const (
	KindJob    JobKind = "job"
	KindFolder JobKind = "folder"
)

// JobListItem is one entry of a folder listing.
type JobListItem struct {
	Name  string  `json:"name"`
	URL   string  `json:"url"`
	Color string  `json:"color,omitempty"`
	Kind  JobKind `json:"kind"`
}

// BuildRef is a lightweight reference to a build.
type BuildRef struct {
	Number int64  `json:"number"`
	URL    string `json:"url,omitempty"`
}

// ParameterDefinition describes one declared job parameter.
type ParameterDefinition struct {
	Name         string   `json:"name"`
	Type         string   `json:"type,omitempty"`
	Description  string   `json:"description,omitempty"`
	DefaultValue any      `json:"default_value,omitempty"`
	Choices      []string `json:"choices,omitempty"`
}

// JobInfo is the detailed view of a single job.
type JobInfo struct {
	Name                string                `json:"name"`
	URL                 string                `json:"url"`
	Description         string                `json:"description,omitempty"`
	Buildable           bool                  `json:"buildable"`
	InQueue             bool                  `json:"in_queue"`
	LastBuild           *BuildRef             `json:"last_build,omitempty"`
	LastSuccessfulBuild *BuildRef             `json:"last_successful_build,omitempty"`
	LastFailedBuild     *BuildRef             `json:"last_failed_build,omitempty"`
	Parameters          []ParameterDefinition `json:"parameters,omitempty"`
}

// BuildListItem is one entry of a build history listing.
type BuildListItem struct {
	Number    int64  `json:"number"`
	URL       string `json:"url,omitempty"`
	Result    string `json:"result,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Duration  int64  `json:"duration_ms,omitempty"`
}

// BuildInfo is the detailed view of a single build.
type BuildInfo struct {
	Number      int64          `json:"number"`
	URL         string         `json:"url,omitempty"`
	Result      string         `json:"result,omitempty"`
	Building    bool           `json:"building"`
	Timestamp   int64          `json:"timestamp,omitempty"`
	Duration    int64          `json:"duration_ms,omitempty"`
	DisplayName string         `json:"display_name,omitempty"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// TriggerResult reports an accepted build trigger. The server queues builds
// asynchronously, so Queued does not imply the build has started.
type TriggerResult struct {
	Queued   bool   `json:"queued"`
	QueueURL string `json:"queue_url,omitempty"`
}

// UpdateResult reports a successful config.xml parameter patch.
type UpdateResult struct {
	Updated   bool   `json:"updated"`
	Parameter string `json:"parameter"`
}

// ConnectionResult is the outcome of a connectivity probe.
type ConnectionResult struct {
	OK      bool   `json:"ok"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

// --- Coercion helpers for loosely-typed server JSON ---

func stringOr(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return fallback
}

func boolOr(m map[string]any, key string, fallback bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return fallback
}

func intOr(m map[string]any, key string, fallback int64) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return fallback
	}
}

func objectOr(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

func buildRefOr(m map[string]any, key string) *BuildRef {
	obj := objectOr(m, key)
	if obj == nil {
		return nil
	}
	return &BuildRef{
		Number: intOr(obj, "number", 0),
		URL:    stringOr(obj, "url", ""),
	}
}
