package engine

// --- Shared result types ---

// ClearResult reports the outcome of a bulk-deletion loop. Success
// means at least one item was removed; Count is the number of observed
// deletions, which can be lower than the number of items when a control
// goes missing mid-loop (partial success is acceptable).
type ClearResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Message string `json:"message,omitempty"`
}

// DownloadResult carries a retrieved artifact. The content is returned
// directly to the caller and never cached.
type DownloadResult struct {
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
	Data     []byte `json:"-"`
}

// Job status values observed from the artifact list UI.
const (
	StatusGenerating = "generating"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusUnknown    = "unknown"
)

// StatusReport is a connectivity and layout snapshot for diagnostics.
type StatusReport struct {
	Connected      bool   `json:"connected"`
	PageURL        string `json:"page_url,omitempty"`
	PageTitle      string `json:"page_title,omitempty"`
	Language       string `json:"language,omitempty"`
	SessionID      string `json:"session_id,omitempty"`
	LibraryPresent bool   `json:"library_present"`
	ArtifactCount  int    `json:"artifact_count"`
	LibraryPreview string `json:"library_preview,omitempty"`
	Error          string `json:"error,omitempty"`
}

// ScreenshotInput selects how a page screenshot is captured and returned.
type ScreenshotInput struct {
	SaveTo   string `json:"save_to,omitempty" jsonschema:"file path to write the png; empty returns base64"`
	FullPage bool   `json:"full_page,omitempty" jsonschema:"capture the full scrollable page"`
}

// ScreenshotResult reports where a captured page image went. Either Path
// or Base64 is set, never both.
type ScreenshotResult struct {
	Saved  bool   `json:"saved"`
	Path   string `json:"path,omitempty"`
	Size   int    `json:"size"`
	Base64 string `json:"base64,omitempty"`
}
