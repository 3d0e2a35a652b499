package speccode

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/robospec/robospec-go/pkg/catalog"
)

// Code layout constants.
const (
	// FieldBits is the width of each field.
	FieldBits = 16

	// FieldCount is the number of fields in a code.
	FieldCount = 5

	// CodeBits is the total width of a code.
	CodeBits = FieldBits * FieldCount

	// CodeSize is the size of a code in bytes.
	CodeSize = CodeBits / 8

	// MaxHexDigits is the number of significant hex digits a code can hold.
	MaxHexDigits = CodeBits / 4
)

// Code is an 80-bit robot specification code, stored big-endian.
type Code [CodeSize]byte

// NewCode packs five field values into a Code.
func NewCode(robotType, variant, gripper catalog.AttrCode, protocols, addons uint16) Code {
	var c Code
	binary.BigEndian.PutUint16(c[0:], uint16(robotType))
	binary.BigEndian.PutUint16(c[2:], uint16(variant))
	binary.BigEndian.PutUint16(c[4:], uint16(gripper))
	binary.BigEndian.PutUint16(c[6:], protocols)
	binary.BigEndian.PutUint16(c[8:], addons)
	return c
}

// Field returns the raw 16-bit value of the field for kind.
func (c Code) Field(kind catalog.Kind) uint16 {
	i := int(kind) * 2
	if i < 0 || i+2 > CodeSize {
		return 0
	}
	return binary.BigEndian.Uint16(c[i:])
}

// RobotType returns the robot type field.
func (c Code) RobotType() catalog.AttrCode { return catalog.AttrCode(c.Field(catalog.KindRobotType)) }

// RobotVariant returns the robot variant field.
func (c Code) RobotVariant() catalog.AttrCode { return catalog.AttrCode(c.Field(catalog.KindVariant)) }

// Gripper returns the gripper field.
func (c Code) Gripper() catalog.AttrCode { return catalog.AttrCode(c.Field(catalog.KindGripper)) }

// Protocols returns the protocol mask.
func (c Code) Protocols() uint16 { return c.Field(catalog.KindProtocol) }

// Addons returns the addon mask.
func (c Code) Addons() uint16 { return c.Field(catalog.KindAddon) }

// Uint returns the code as a 16-bit high part and a 64-bit low part.
func (c Code) Uint() (hi uint16, lo uint64) {
	return binary.BigEndian.Uint16(c[0:]), binary.BigEndian.Uint64(c[2:])
}

// IsZero reports whether every bit is zero.
func (c Code) IsZero() bool {
	return c == Code{}
}

// Hex returns the code as lowercase hex without leading zeros.
func (c Code) Hex() string {
	s := strings.TrimLeft(hex.EncodeToString(c[:]), "0")
	if s == "" {
		return "0"
	}
	return s
}

// Padded returns the code as 20 lowercase hex digits.
func (c Code) Padded() string {
	return hex.EncodeToString(c[:])
}

// Bits returns the code as 80 binary digits.
func (c Code) Bits() string {
	var sb strings.Builder
	sb.Grow(CodeBits)
	for _, b := range c {
		fmt.Fprintf(&sb, "%08b", b)
	}
	return sb.String()
}

// String returns the code in display form, e.g. 0x10017004180004000.
func (c Code) String() string {
	return "0x" + c.Hex()
}

// MarshalText implements encoding.TextMarshaler.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Code) UnmarshalText(text []byte) error {
	parsed, err := ParseCode(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCode parses a hex string into a Code. Surrounding whitespace and a 0x
// prefix are ignored. Inputs with fewer than 20 significant digits are
// zero-extended on the left.
func ParseCode(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if s == "" {
		return Code{}, fmt.Errorf("%w: empty input", ErrMalformedHex)
	}
	for i, r := range s {
		if !isHexDigit(r) {
			return Code{}, fmt.Errorf("%w: invalid character %q at position %d", ErrMalformedHex, r, i)
		}
	}

	digits := strings.TrimLeft(s, "0")
	if len(digits) > MaxHexDigits {
		return Code{}, fmt.Errorf("%w: %d significant hex digits (max %d)", ErrOutOfRange, len(digits), MaxHexDigits)
	}

	var c Code
	padded := strings.Repeat("0", MaxHexDigits-len(digits)) + digits
	if _, err := hex.Decode(c[:], []byte(padded)); err != nil {
		return Code{}, fmt.Errorf("%w: %v", ErrMalformedHex, err)
	}
	return c, nil
}

// MustParseCode parses a code and panics on error.
// Use only in tests or for codes known to be valid.
func MustParseCode(s string) Code {
	c, err := ParseCode(s)
	if err != nil {
		panic(err)
	}
	return c
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
