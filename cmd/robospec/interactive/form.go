// Package interactive provides the interactive form session for robospec.
package interactive

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/robospec/robospec-go/pkg/catalog"
	"github.com/robospec/robospec-go/pkg/speccode"
)

// Mode is the input mode of the form.
type Mode uint8

const (
	// ModeIdle accepts no input until a mode is chosen.
	ModeIdle Mode = iota
	// ModeSelect builds a selection attribute by attribute and encodes it.
	ModeSelect
	// ModeCode takes a hex code and decodes it.
	ModeCode
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeSelect:
		return "robot"
	case ModeCode:
		return "code"
	default:
		return "unknown"
	}
}

// Form errors.
var (
	ErrWrongMode  = errors.New("not available in this mode")
	ErrNoCode     = errors.New("no hexadecimal value entered")
	ErrUnknownKey = errors.New("unknown option")
)

// Result is a submitted form.
type Result struct {
	Selection speccode.Selection
	Code      speccode.Code
	Mode      Mode
}

// Form holds the state of one interactive specification. It is not safe for
// concurrent use.
type Form struct {
	codec *speccode.Codec
	mode  Mode
	sel   speccode.Selection
	input string
	last  *Result
}

// NewForm creates an idle form backed by codec.
func NewForm(codec *speccode.Codec) *Form {
	return &Form{codec: codec}
}

// Mode returns the current mode.
func (f *Form) Mode() Mode { return f.mode }

// Selection returns a copy of the selection entered so far.
func (f *Form) Selection() speccode.Selection { return f.sel.Clone() }

// Input returns the hex value entered in code mode.
func (f *Form) Input() string { return f.input }

// Last returns the most recent successful submission, or nil.
func (f *Form) Last() *Result { return f.last }

// Missing lists the selection fields not yet chosen.
func (f *Form) Missing() []catalog.Kind { return f.sel.Missing() }

// SelectMode switches to attribute selection. The entered code is dropped;
// the selection is kept.
func (f *Form) SelectMode() {
	f.mode = ModeSelect
	f.input = ""
}

// CodeMode switches to code entry. The selection is kept so a decoded code
// can be compared against it.
func (f *Form) CodeMode() {
	f.mode = ModeCode
}

// Clear resets the form to its initial idle state.
func (f *Form) Clear() {
	*f = Form{codec: f.codec}
}

// Options returns the names offered for kind. Variants are narrowed to the
// family of the chosen robot type.
func (f *Form) Options(kind catalog.Kind) []string {
	cat := f.codec.Catalog()
	if kind == catalog.KindVariant && f.sel.RobotType != "" {
		if family := cat.VariantsOf(f.sel.RobotType); len(family) > 0 {
			return family
		}
	}
	return cat.Names(kind)
}

// SetRobotType chooses the robot type. An empty name clears it. A variant
// outside the new type's family is cleared.
func (f *Form) SetRobotType(name string) error {
	if err := f.requireMode(ModeSelect); err != nil {
		return err
	}
	if name == "" {
		f.sel.RobotType = ""
		return nil
	}
	name, err := f.resolve(catalog.KindRobotType, name)
	if err != nil {
		return err
	}
	f.sel.RobotType = name
	if f.sel.RobotVariant != "" && f.codec.Catalog().CheckFamily(name, f.sel.RobotVariant) != nil {
		f.sel.RobotVariant = ""
	}
	return nil
}

// SetVariant chooses the robot variant and selects its robot type.
func (f *Form) SetVariant(name string) error {
	if err := f.requireMode(ModeSelect); err != nil {
		return err
	}
	if name == "" {
		f.sel.RobotVariant = ""
		return nil
	}
	name, err := f.resolve(catalog.KindVariant, name)
	if err != nil {
		return err
	}
	f.sel.RobotVariant = name
	if owner, ok := f.codec.Catalog().TypeOfVariant(name); ok {
		f.sel.RobotType = owner
	}
	return nil
}

// SetGripper chooses the gripper. An empty name clears it.
func (f *Form) SetGripper(name string) error {
	if err := f.requireMode(ModeSelect); err != nil {
		return err
	}
	if name == "" {
		f.sel.Gripper = ""
		return nil
	}
	name, err := f.resolve(catalog.KindGripper, name)
	if err != nil {
		return err
	}
	f.sel.Gripper = name
	return nil
}

// ToggleProtocol checks or unchecks a protocol and reports its new state.
func (f *Form) ToggleProtocol(name string) (bool, error) {
	return f.toggle(catalog.KindProtocol, &f.sel.Protocols, name)
}

// ToggleAddon checks or unchecks an addon and reports its new state.
func (f *Form) ToggleAddon(name string) (bool, error) {
	return f.toggle(catalog.KindAddon, &f.sel.Addons, name)
}

func (f *Form) toggle(kind catalog.Kind, set *[]string, name string) (bool, error) {
	if err := f.requireMode(ModeSelect); err != nil {
		return false, err
	}
	name, err := f.resolve(kind, name)
	if err != nil {
		return false, err
	}
	if i := slices.Index(*set, name); i >= 0 {
		*set = slices.Delete(*set, i, i+1)
		return false, nil
	}
	*set = append(*set, name)
	return true, nil
}

// SetCode enters the hex value to decode.
func (f *Form) SetCode(hex string) error {
	if err := f.requireMode(ModeCode); err != nil {
		return err
	}
	f.input = strings.TrimSpace(hex)
	return nil
}

// Submit encodes the selection in select mode or decodes the entered code in
// code mode. On success the form holds the normalized selection.
func (f *Form) Submit() (*Result, error) {
	switch f.mode {
	case ModeSelect:
		code, err := f.codec.Encode(f.sel)
		if err != nil {
			return nil, err
		}
		norm, err := f.codec.Normalize(f.sel)
		if err != nil {
			return nil, err
		}
		f.sel = norm
		f.last = &Result{Selection: norm.Clone(), Code: code, Mode: ModeSelect}
		return f.last, nil

	case ModeCode:
		if f.input == "" {
			return nil, ErrNoCode
		}
		sel, err := f.codec.Decode(f.input)
		if err != nil {
			return nil, err
		}
		code, err := speccode.ParseCode(f.input)
		if err != nil {
			return nil, err
		}
		f.sel = sel
		f.last = &Result{Selection: sel.Clone(), Code: code, Mode: ModeCode}
		return f.last, nil

	default:
		return nil, fmt.Errorf("%w: choose robot or code mode first", ErrWrongMode)
	}
}

func (f *Form) requireMode(m Mode) error {
	if f.mode != m {
		return fmt.Errorf("%w: %s mode required (current: %s)", ErrWrongMode, m, f.mode)
	}
	return nil
}

// resolve matches name against the catalog, exactly first and then
// case-insensitively.
func (f *Form) resolve(kind catalog.Kind, name string) (string, error) {
	names := f.codec.Catalog().Names(kind)
	if slices.Contains(names, name) {
		return name, nil
	}
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %s %q", ErrUnknownKey, kind.Label(), name)
}
