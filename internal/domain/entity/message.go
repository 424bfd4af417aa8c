package entity

import "github.com/google/uuid"

// NarrationRequestMessage is the inbound message from the narration.requests queue.
type NarrationRequestMessage struct {
	JobID     uuid.UUID `json:"job_id"`
	UserID    string    `json:"user_id"`
	VideoKey  string    `json:"video_key"`
	FileSize  int64     `json:"file_size"`
	UserEmail string    `json:"user_email"`
}

// NarrationStatusMessage is the outbound message published to the narration.status queue.
type NarrationStatusMessage struct {
	JobID          uuid.UUID `json:"job_id"`
	UserID         string    `json:"user_id"`
	Status         JobStatus `json:"status"`
	VideoKey       string    `json:"video_key"`
	ScriptKey      string    `json:"script_key,omitempty"`
	BundleKey      string    `json:"bundle_key,omitempty"`
	SceneCount     int       `json:"scene_count,omitempty"`
	UtteranceCount int       `json:"utterance_count,omitempty"`
	Duration       float64   `json:"duration_seconds,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	Attempt        int       `json:"attempt"`
	MaxAttempts    int       `json:"max_attempts"`
}
