package domain

// SubmissionState is the transient status of a single form.
type SubmissionState struct {
	Processing   bool
	ErrorMessage string
}

// Payload is the opaque body returned by the backend.
type Payload struct {
	Data        []byte
	ContentType string
}
