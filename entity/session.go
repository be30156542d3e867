package entity

// SessionState tracks one staging session through its lifecycle:
// Empty -> Staging (on first upload) -> Accepted | Rejected. Both terminal
// states are final; re-entering Staging requires a new session id.
type SessionState string

const (
	SessionEmpty    SessionState = ""
	SessionStaging  SessionState = "STAGING"
	SessionAccepted SessionState = "ACCEPTED"
	SessionRejected SessionState = "REJECTED"
)

// Terminal reports whether the session can no longer accept uploads.
func (s SessionState) Terminal() bool {
	return s == SessionAccepted || s == SessionRejected
}

// StagingSession describes one in-progress multi-file upload batch. All files
// uploaded under one session id live under the private prefix
// "{stagingBucket}/{sessionId}/", isolating concurrent editors.
type StagingSession struct {
	ID               string `json:"id"`
	StagingBucket    string `json:"staging_bucket"`
	TargetObjectType string `json:"target_object_type"`
	TargetObjectID   string `json:"target_object_id"`
	TargetBucket     string `json:"target_bucket"`
}
