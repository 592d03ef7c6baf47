package cli

// SilentError wraps an error whose message has already been written to the
// user. The entry point uses it to set a non-zero exit code without printing
// the error a second time.
type SilentError struct {
	Err error
}

func (e *SilentError) Error() string {
	return e.Err.Error()
}

func (e *SilentError) Unwrap() error {
	return e.Err
}

// NewSilentError wraps err as a SilentError.
func NewSilentError(err error) *SilentError {
	return &SilentError{Err: err}
}
