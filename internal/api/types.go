package api

// SpoolEntry describes a spooled story in a transport-friendly format.
type SpoolEntry struct {
	ID           int64  `json:"id"`
	URL          string `json:"url"`
	Site         string `json:"site"`
	SourceFile   string `json:"source_file,omitempty"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// StatusLine is a labeled severity/detail pair for status rendering.
type StatusLine struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// Severities used in StatusLine values.
const (
	SeverityOK    = "ok"
	SeverityInfo  = "info"
	SeverityWarn  = "warn"
	SeverityError = "error"
)
