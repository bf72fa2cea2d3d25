package model

import "time"

// Timestamp is a time.Time whose zero value serializes as JSON null, so an
// absent log timestamp is visibly absent in event dumps.
type Timestamp struct {
	time.Time
}

// MarshalJSON emits null for the zero value, RFC 3339 otherwise.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return t.Time.MarshalJSON()
}

// UnmarshalJSON accepts null as the zero value.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	return t.Time.UnmarshalJSON(data)
}

// Event is one parsed access-log line, annotated with signature detections.
// Timestamp is the zero value when the bracketed timestamp could not be
// parsed; Tool is empty when the user-agent matched no known signature.
type Event struct {
	Address    string    `json:"ip"`
	Timestamp  Timestamp `json:"timestamp"`
	Method     string    `json:"method"`
	Target     string    `json:"url"` // raw request target, un-decoded
	Path       string    `json:"path"`
	Query      string    `json:"query"`
	Status     int       `json:"status"`
	Bytes      int64     `json:"bytes"`
	UserAgent  string    `json:"user_agent"`
	Referer    string    `json:"referer,omitempty"`
	Tool       string    `json:"tool,omitempty"`
	AttackTags []string  `json:"abnormal,omitempty"`
}

// Abnormal reports whether the event carries at least one attack tag.
func (e Event) Abnormal() bool {
	return len(e.AttackTags) > 0
}

// HasTimestamp reports whether the log line carried a parseable timestamp.
func (e Event) HasTimestamp() bool {
	return !e.Timestamp.IsZero()
}
