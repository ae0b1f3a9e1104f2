package model

const (
	VideoStatusProcessing = "processing"
	VideoStatusReady      = "ready"
	VideoStatusError      = "error"
)

type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Duration    int64  `json:"duration"`
	Ctime       int64  `json:"ctime"`
	Mtime       int64  `json:"mtime"`
}

// VideoDetail is a video plus its attached metadata, as served on the
// single-video endpoint.
type VideoDetail struct {
	Video    *Video    `json:"video"`
	Tags     []Tag     `json:"tags"`
	Chapters []Chapter `json:"chapters"`
}
