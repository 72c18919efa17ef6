package audios

import "time"

// Audio is one uploaded call recording. Transcript and TranscribedAt are
// set together once transcription succeeds, never one without the other.
type Audio struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Filename      string     `json:"filename"`
	StorageKey    string     `json:"storageKey"`
	UploadedAt    time.Time  `json:"uploadedAt"`
	Transcript    *string    `json:"transcript"`
	TranscribedAt *time.Time `json:"transcribedAt"`
}
