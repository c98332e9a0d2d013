package bam

import (
	"errors"
	"fmt"
)

// ErrInvalidContainer matches every format violation via errors.Is.
var ErrInvalidContainer = errors.New("invalid BAM container")

var (
	// ErrAlreadyRegistered is returned when a type name is registered twice.
	ErrAlreadyRegistered = errors.New("type already registered")

	// ErrNotRegistered is returned when unregistering an unknown type name.
	ErrNotRegistered = errors.New("type not registered")

	// ErrObjectIDUnset is returned when saving an object that was never bound
	// to a record.
	ErrObjectIDUnset = errors.New("object id has not been set")
)

// FormatError reports a violation of the container format.
//
// A load that returns a FormatError leaves the File partially populated; it
// must be discarded.
type FormatError struct {
	// Code identifies the violation.
	Code FormatErrorCode

	// Message is a human-readable description.
	Message string

	// ObjID is the object being decoded, when known.
	ObjID uint32

	// Handle is the type name of that object, when known.
	Handle string

	// Err is the underlying cause, if any.
	Err error
}

// FormatErrorCode categorizes format violations.
type FormatErrorCode string

const (
	ErrCodeBadMagic          FormatErrorCode = "BAD_MAGIC"
	ErrCodeTruncated         FormatErrorCode = "TRUNCATED"
	ErrCodeNonZeroNullArray  FormatErrorCode = "NONZERO_NULL_ARRAY"
	ErrCodeDuplicateObject   FormatErrorCode = "DUPLICATE_OBJECT"
	ErrCodeHandleDepth       FormatErrorCode = "HANDLE_DEPTH"
	ErrCodeHandleRedefined   FormatErrorCode = "HANDLE_REDEFINED"
	ErrCodeUndefinedHandle   FormatErrorCode = "UNDEFINED_HANDLE"
	ErrCodeArrayTypeMismatch FormatErrorCode = "ARRAY_TYPE_MISMATCH"
)

// Error implements the error interface.
func (e *FormatError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.ObjID != 0 && e.Handle != "" {
		msg = fmt.Sprintf("%s (object=%d, type=%s)", msg, e.ObjID, e.Handle)
	} else if e.ObjID != 0 {
		msg = fmt.Sprintf("%s (object=%d)", msg, e.ObjID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both ErrInvalidContainer and the underlying cause.
func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidContainer}
	}
	return []error{ErrInvalidContainer, e.Err}
}

// IsFormatError returns true if err is or wraps a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsDuplicateObject returns true if err reports a repeated object id.
func IsDuplicateObject(err error) bool {
	var fe *FormatError
	if errors.As(err, &fe) {
		return fe.Code == ErrCodeDuplicateObject
	}
	return false
}

func newFormatError(code FormatErrorCode, message string, cause error) *FormatError {
	return &FormatError{Code: code, Message: message, Err: cause}
}

// NewDuplicateObjectError creates a FormatError for a repeated object id.
func NewDuplicateObjectError(objID uint32, handleName string) *FormatError {
	return &FormatError{
		Code:    ErrCodeDuplicateObject,
		Message: "object id encountered twice in the stream",
		ObjID:   objID,
		Handle:  handleName,
	}
}
