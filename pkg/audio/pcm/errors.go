package pcm

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// DecodeError represents a failure to open, probe or decode an audio file
type DecodeError struct {
	Format  Format `json:"format"`
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeOpen          = "OPEN_FAILED"
	ErrCodeUnsupported   = "UNSUPPORTED_FORMAT"
	ErrCodeInvalidFormat = "INVALID_FORMAT"
	ErrCodeDecoding      = "DECODING_FAILED"
	ErrCodeProbe         = "PROBE_FAILED"
)

// NewDecodeError creates a new decode error
func NewDecodeError(format Format, path, code, message string, cause error) *DecodeError {
	return &DecodeError{
		Format:  format,
		Path:    path,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
