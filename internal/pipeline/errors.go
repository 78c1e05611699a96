package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedInputRow   = errors.New("malformed input row")
	ErrRejectedName        = errors.New("rejected name")
	ErrAmbiguousMatch      = errors.New("ambiguous match")
	ErrLookupUnavailable   = errors.New("directory lookup unavailable")
	ErrFatalInputStructure = errors.New("unrecognized input structure")
)

type RejectReason string

const (
	RejectEmpty       RejectReason = "empty"
	RejectMultiPerson RejectReason = "multi_person"
	RejectPlaceholder RejectReason = "placeholder"
	RejectHeading     RejectReason = "heading"
	RejectIncomplete  RejectReason = "incomplete"
)

type RejectedNameError struct {
	Raw    string
	Reason RejectReason
}

func (e *RejectedNameError) Error() string {
	return fmt.Sprintf("rejected name %q: %s", e.Raw, e.Reason)
}

func (e *RejectedNameError) Unwrap() error {
	return ErrRejectedName
}

func reject(raw string, reason RejectReason) error {
	return &RejectedNameError{Raw: raw, Reason: reason}
}

// MalformedRowError reports a table row that fits no column layout.
type MalformedRowError struct {
	Origin string
	LineNo int
	Detail string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Origin, e.LineNo, e.Detail)
}

func (e *MalformedRowError) Unwrap() error {
	return ErrMalformedInputRow
}
