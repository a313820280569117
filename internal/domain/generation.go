package domain

import "time"

// Status enumerates the lifecycle states of a generation job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// GenerateOptions is the immutable snapshot of user-chosen options captured
// when a job is created. Unknown style/background keys fall back to defaults
// at prompt-build time rather than being rejected here.
type GenerateOptions struct {
	StylePreset         string `json:"stylePreset"`
	Layout              string `json:"layout"`
	Background          string `json:"background"`
	IncludeTurnaround   bool   `json:"includeTurnaround"`
	IncludeActionPoses  bool   `json:"includeActionPoses"`
	Seed                *int   `json:"seed,omitempty"`
	Nickname            string `json:"nickname,omitempty"`
	FaceConsistencyLock bool   `json:"faceConsistencyLock,omitempty"`
}

// Generation tracks one character-sheet request from creation to terminal
// status. OutputURL/ThumbnailURL are set only on the transition into
// completed; Error only on the transition into failed.
type Generation struct {
	ID           string
	Status       Status
	Options      GenerateOptions
	OutputURL    string
	ThumbnailURL string
	Error        string
	CreatedAt    time.Time
}
