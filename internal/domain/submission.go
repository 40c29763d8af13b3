package domain

import "time"

// Submission is a journal entry for one request sent to the backend.
type Submission struct {
	ID           string     `csv:"id"            db:"id"            json:"id"`
	Form         string     `csv:"form"          db:"form"          json:"form"`
	Filename     string     `csv:"filename"      db:"filename"      json:"filename"`
	FileSize     int64      `csv:"file_size"     db:"file_size"     json:"file_size"`
	Status       Status     `csv:"status"        db:"status"        json:"status"`
	ErrorMessage string     `csv:"error_message" db:"error_message" json:"error_message,omitempty"`
	PayloadSize  int64      `csv:"payload_size"  db:"payload_size"  json:"payload_size"`
	StartedAt    time.Time  `csv:"started_at"    db:"started_at"    json:"started_at"`
	FinishedAt   *time.Time `csv:"finished_at"   db:"finished_at"   json:"finished_at,omitempty"`
}
