package speccode

import (
	"errors"
	"strings"

	"github.com/robospec/robospec-go/pkg/catalog"
)

// Codec errors.
var (
	ErrUnknownAttribute    = errors.New("unknown attribute")
	ErrMalformedHex        = errors.New("malformed hex")
	ErrOutOfRange          = errors.New("code out of range")
	ErrEmptySet            = errors.New("empty set")
	ErrIncompleteSelection = errors.New("incomplete selection")
)

// IncompleteSelectionError lists the fields missing from a Selection, in
// encoding order.
type IncompleteSelectionError struct {
	Missing []catalog.Kind
}

func (e *IncompleteSelectionError) Error() string {
	labels := make([]string, len(e.Missing))
	for i, k := range e.Missing {
		labels[i] = k.Label()
	}
	return ErrIncompleteSelection.Error() + ": missing " + strings.Join(labels, ", ")
}

// Is reports whether target is ErrIncompleteSelection.
func (e *IncompleteSelectionError) Is(target error) bool {
	return target == ErrIncompleteSelection
}

// ErrorKind classifies codec errors.
type ErrorKind uint8

const (
	KindNone ErrorKind = iota
	KindUnknownAttribute
	KindMalformedHex
	KindOutOfRange
	KindEmptySet
	KindIncompleteSelection
	KindOther
)

// String returns the error kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUnknownAttribute:
		return "unknown_attribute"
	case KindMalformedHex:
		return "malformed_hex"
	case KindOutOfRange:
		return "out_of_range"
	case KindEmptySet:
		return "empty_set"
	case KindIncompleteSelection:
		return "incomplete_selection"
	default:
		return "other"
	}
}

// KindOf returns the kind of err. A nil error is KindNone.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrIncompleteSelection):
		return KindIncompleteSelection
	case errors.Is(err, ErrUnknownAttribute):
		return KindUnknownAttribute
	case errors.Is(err, ErrMalformedHex):
		return KindMalformedHex
	case errors.Is(err, ErrOutOfRange):
		return KindOutOfRange
	case errors.Is(err, ErrEmptySet):
		return KindEmptySet
	default:
		return KindOther
	}
}
