package wire

import (
	"errors"
	"fmt"
	"strings"
)

// Decode errors
var (
	ErrNoEnoughData        = errors.New("decoder: not enough data to read")
	ErrUnknownType         = errors.New("decoder: unknown tars type")
	ErrTagNotFound         = errors.New("decoder: tag not found")
	ErrMismatchType        = errors.New("decoder: mismatch type")
	ErrWrongSimpleListType = errors.New("decoder: wrong simple list type")
	ErrTooDeep             = errors.New("decoder: nesting too deep")
)

// Encode errors
var (
	ErrTagTooBig        = errors.New("encoder: tag too big, max value is 255")
	ErrConvertToByte    = errors.New("encoder: cannot convert to u8")
	ErrBufferTooBig     = errors.New("encoder: length bigger than 4294967295 bytes")
	ErrUnsupportedValue = errors.New("encoder: unsupported value")
)

// FieldError represents an encoding/decoding error with a field path.
type FieldError struct {
	FieldPath []string // e.g., ["user", "address", "city"]
	Err       error    // underlying error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if len(e.FieldPath) == 0 {
		return e.Err.Error()
	}

	return fmt.Sprintf("error at tars path %s: %v", strings.Join(e.FieldPath, "."), e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// wrapWithField prepends fieldName to the error's path, creating a
// FieldError when err is not one already.
func wrapWithField(err error, fieldName string) error {
	if err == nil {
		return nil
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		return &FieldError{
			FieldPath: append([]string{fieldName}, fe.FieldPath...),
			Err:       fe.Err,
		}
	}

	return &FieldError{
		FieldPath: []string{fieldName},
		Err:       err,
	}
}

// mismatch reports a header whose mark cannot hold the requested kind.
func mismatch(h Header, want string) error {
	return fmt.Errorf("%w: tag %d is %s, want %s", ErrMismatchType, h.Tag, h.Type, want)
}

// notFound reports a required tag missing from the region.
func notFound(tag Tag) error {
	return fmt.Errorf("%w: %d", ErrTagNotFound, tag)
}
