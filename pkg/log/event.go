package log

import (
	"fmt"
	"strings"
	"time"
)

// Event is one traced codec operation.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the operation finished.
	Timestamp time.Time `cbor:"1,keyasint" json:"timestamp"`

	// SessionID groups the events of one codec instance (UUID).
	SessionID string `cbor:"2,keyasint" json:"session_id"`

	// Operation is encode or decode.
	Operation Operation `cbor:"3,keyasint" json:"operation"`

	// Outcome is ok or rejected.
	Outcome Outcome `cbor:"4,keyasint" json:"outcome"`

	// Catalog names the catalog the codec was built from.
	Catalog string `cbor:"5,keyasint,omitempty" json:"catalog,omitempty"`

	// Input is the raw decode input.
	Input string `cbor:"6,keyasint,omitempty" json:"input,omitempty"`

	// Code is the zero-padded hex code (encode result or parsed decode input).
	Code string `cbor:"7,keyasint,omitempty" json:"code,omitempty"`

	// Selection is the encoded or decoded selection.
	Selection *SelectionRecord `cbor:"8,keyasint,omitempty" json:"selection,omitempty"`

	// Error is set when the operation was rejected.
	Error *ErrorRecord `cbor:"9,keyasint,omitempty" json:"error,omitempty"`

	// Duration is the time spent in the operation (nanoseconds).
	Duration time.Duration `cbor:"10,keyasint,omitempty" json:"duration_ns,omitempty"`
}

// SelectionRecord is the logged form of a selection.
type SelectionRecord struct {
	RobotType    string   `cbor:"1,keyasint,omitempty" json:"robot_type,omitempty"`
	RobotVariant string   `cbor:"2,keyasint,omitempty" json:"robot_variant,omitempty"`
	Gripper      string   `cbor:"3,keyasint,omitempty" json:"gripper,omitempty"`
	Protocols    []string `cbor:"4,keyasint,omitempty" json:"protocols,omitempty"`
	Addons       []string `cbor:"5,keyasint,omitempty" json:"addons,omitempty"`
}

// ErrorRecord captures a rejected operation.
type ErrorRecord struct {
	// Kind is the codec error kind, e.g. "unknown_attribute".
	Kind string `cbor:"1,keyasint" json:"kind"`

	// Message is the full error text.
	Message string `cbor:"2,keyasint" json:"message"`
}

// Operation identifies the traced codec call.
type Operation uint8

const (
	// OpEncode is a selection-to-code call.
	OpEncode Operation = 0
	// OpDecode is a code-to-selection call.
	OpDecode Operation = 1
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpEncode:
		return "ENCODE"
	case OpDecode:
		return "DECODE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the operation name for JSON export.
func (o Operation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// ParseOperation parses an operation name (case-insensitive).
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(s) {
	case "encode":
		return OpEncode, nil
	case "decode":
		return OpDecode, nil
	default:
		return 0, fmt.Errorf("unknown operation: %s (valid: encode, decode)", s)
	}
}

// Outcome is the result of a traced call.
type Outcome uint8

const (
	// OutcomeOK indicates the call succeeded.
	OutcomeOK Outcome = 0
	// OutcomeRejected indicates the codec rejected the input.
	OutcomeRejected Outcome = 1
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "OK"
	case OutcomeRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the outcome name for JSON export.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// ParseOutcome parses an outcome name (case-insensitive).
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(s) {
	case "ok":
		return OutcomeOK, nil
	case "rejected":
		return OutcomeRejected, nil
	default:
		return 0, fmt.Errorf("unknown outcome: %s (valid: ok, rejected)", s)
	}
}
