package upload

// In this file: the upload error taxonomy.  Each error carries the remote
// status and response body for diagnostics; none of them is retried
// internally.

import "fmt"

// InitError indicates that the initialize phase returned a non-success
// status, or a success response without a media identifier.
type InitError struct {
	Status int
	Body   string
}

func (e *InitError) Error() string {
	return fmt.Sprintf("upload initialize: status %d: %s", e.Status, e.Body)
}

// AppendError indicates that the upload of a specific segment failed.  The
// whole upload is aborted: no further segments are sent and finalize is
// never called.
type AppendError struct {
	Segment int
	Status  int
	Body    string
}

func (e *AppendError) Error() string {
	return fmt.Sprintf("upload append: segment %d: status %d: %s", e.Segment, e.Status, e.Body)
}

// FinalizeError indicates that the finalize phase failed.
type FinalizeError struct {
	Status int
	Body   string
}

func (e *FinalizeError) Error() string {
	return fmt.Sprintf("upload finalize: status %d: %s", e.Status, e.Body)
}
