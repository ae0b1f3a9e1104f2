package model

type Chapter struct {
	ID       string `json:"id"`
	VideoID  string `json:"video_id"`
	Title    string `json:"title"`
	StartSec int64  `json:"start_sec"`
	EndSec   int64  `json:"end_sec"`
}
