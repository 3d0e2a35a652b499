package speccode

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robospec/robospec-go/pkg/catalog"
	"github.com/robospec/robospec-go/pkg/log"
)

// Codec converts between Selections and Codes using one catalog.
type Codec struct {
	cat       *catalog.Catalog
	logger    log.Logger
	sessionID string
	now       func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger traces every Encode and Decode call to logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Codec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSessionID overrides the generated session ID recorded in trace events.
func WithSessionID(id string) Option {
	return func(c *Codec) {
		c.sessionID = id
	}
}

// New creates a Codec for cat.
func New(cat *catalog.Catalog, opts ...Option) *Codec {
	c := &Codec{
		cat:       cat,
		logger:    log.NoopLogger{},
		sessionID: uuid.NewString(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Catalog returns the catalog the codec was built with.
func (c *Codec) Catalog() *catalog.Catalog {
	return c.cat
}

// SessionID returns the ID recorded in this codec's trace events.
func (c *Codec) SessionID() string {
	return c.sessionID
}

// Encode packs a complete selection into a Code.
func (c *Codec) Encode(sel Selection) (Code, error) {
	start := c.now()
	code, err := c.encode(sel)
	c.trace(log.OpEncode, start, "", code, sel, err)
	return code, err
}

func (c *Codec) encode(sel Selection) (Code, error) {
	missing := sel.Missing()
	for _, k := range missing {
		if !k.IsFlag() {
			return Code{}, &IncompleteSelectionError{Missing: missing}
		}
	}
	if len(missing) > 0 {
		return Code{}, fmt.Errorf("%w: no %s selected", ErrEmptySet, missing[0].Label())
	}

	robotType, err := lookup(c.cat.RobotTypes(), sel.RobotType)
	if err != nil {
		return Code{}, err
	}
	variant, err := lookup(c.cat.Variants(), sel.RobotVariant)
	if err != nil {
		return Code{}, err
	}
	gripper, err := lookup(c.cat.Grippers(), sel.Gripper)
	if err != nil {
		return Code{}, err
	}
	protocols, err := maskOf(c.cat.Protocols(), sel.Protocols)
	if err != nil {
		return Code{}, err
	}
	addons, err := maskOf(c.cat.Addons(), sel.Addons)
	if err != nil {
		return Code{}, err
	}

	return NewCode(robotType, variant, gripper, protocols, addons), nil
}

// Decode parses a hex string and unpacks it into a Selection.
func (c *Codec) Decode(s string) (Selection, error) {
	start := c.now()
	code, err := ParseCode(s)
	if err != nil {
		c.traceInput(start, s, err)
		return Selection{}, err
	}
	sel, err := c.decode(code)
	c.trace(log.OpDecode, start, s, code, sel, err)
	return sel, err
}

// DecodeCode unpacks an already parsed Code into a Selection.
func (c *Codec) DecodeCode(code Code) (Selection, error) {
	start := c.now()
	sel, err := c.decode(code)
	c.trace(log.OpDecode, start, "", code, sel, err)
	return sel, err
}

func (c *Codec) decode(code Code) (Selection, error) {
	robotType, err := reverse(c.cat.RobotTypes(), code.RobotType())
	if err != nil {
		return Selection{}, err
	}
	variant, err := reverse(c.cat.Variants(), code.RobotVariant())
	if err != nil {
		return Selection{}, err
	}
	gripper, err := reverse(c.cat.Grippers(), code.Gripper())
	if err != nil {
		return Selection{}, err
	}
	protocols, err := namesOf(c.cat.Protocols(), code.Protocols())
	if err != nil {
		return Selection{}, err
	}
	addons, err := namesOf(c.cat.Addons(), code.Addons())
	if err != nil {
		return Selection{}, err
	}

	return Selection{
		RobotType:    robotType,
		RobotVariant: variant,
		Gripper:      gripper,
		Protocols:    protocols,
		Addons:       addons,
	}, nil
}

// Normalize returns sel with protocols and addons deduplicated and in
// catalog order, which is the form Decode produces.
func (c *Codec) Normalize(sel Selection) (Selection, error) {
	protocols, err := maskOf(c.cat.Protocols(), sel.Protocols)
	if err != nil {
		return Selection{}, err
	}
	addons, err := maskOf(c.cat.Addons(), sel.Addons)
	if err != nil {
		return Selection{}, err
	}
	out := sel.Clone()
	out.Protocols, _ = namesOf(c.cat.Protocols(), protocols)
	out.Addons, _ = namesOf(c.cat.Addons(), addons)
	return out, nil
}

func lookup(t *catalog.Table, name string) (catalog.AttrCode, error) {
	code, ok := t.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s %q", ErrUnknownAttribute, t.Kind().Label(), name)
	}
	return code, nil
}

func reverse(t *catalog.Table, code catalog.AttrCode) (string, error) {
	name, ok := t.Name(code)
	if !ok {
		return "", fmt.Errorf("%w: %s code %#04x", ErrUnknownAttribute, t.Kind().Label(), uint16(code))
	}
	return name, nil
}

// maskOf sets the bit of every named flag. Duplicates are harmless.
func maskOf(f *catalog.FlagSet, names []string) (uint16, error) {
	var mask uint16
	for _, n := range names {
		bit, ok := f.Mask(n)
		if !ok {
			return 0, fmt.Errorf("%w: %s %q", ErrUnknownAttribute, f.Kind().Label(), n)
		}
		mask |= bit
	}
	return mask, nil
}

// namesOf lists the flags set in mask in catalog order. Bits beyond the
// catalog are rejected; an empty mask is ErrEmptySet.
func namesOf(f *catalog.FlagSet, mask uint16) ([]string, error) {
	names := make([]string, 0, f.Len())
	for pos := 0; pos < f.Len(); pos++ {
		if mask&(1<<(catalog.MaxFlags-1-pos)) != 0 {
			name, _ := f.At(pos)
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no %s selected", ErrEmptySet, f.Kind().Label())
	}
	if extra := mask &^ f.ValidMask(); extra != 0 {
		return nil, fmt.Errorf("%w: %s bits %016b have no catalog entry", ErrUnknownAttribute, f.Kind().Label(), extra)
	}
	return names, nil
}

func (c *Codec) trace(op log.Operation, start time.Time, input string, code Code, sel Selection, err error) {
	if _, off := c.logger.(log.NoopLogger); off {
		return
	}
	event := c.newEvent(op, start, err)
	event.Input = input
	if err == nil {
		event.Code = code.Padded()
		event.Selection = &log.SelectionRecord{
			RobotType:    sel.RobotType,
			RobotVariant: sel.RobotVariant,
			Gripper:      sel.Gripper,
			Protocols:    sel.Protocols,
			Addons:       sel.Addons,
		}
	} else if op == log.OpDecode {
		event.Code = code.Padded()
	}
	c.logger.Log(event)
}

// traceInput records a decode input that did not parse as a code.
func (c *Codec) traceInput(start time.Time, input string, err error) {
	if _, off := c.logger.(log.NoopLogger); off {
		return
	}
	event := c.newEvent(log.OpDecode, start, err)
	event.Input = input
	c.logger.Log(event)
}

func (c *Codec) newEvent(op log.Operation, start time.Time, err error) log.Event {
	now := c.now()
	event := log.Event{
		Timestamp: now,
		SessionID: c.sessionID,
		Operation: op,
		Outcome:   log.OutcomeOK,
		Catalog:   c.cat.Name(),
		Duration:  now.Sub(start),
	}
	if err != nil {
		event.Outcome = log.OutcomeRejected
		event.Error = &log.ErrorRecord{Kind: KindOf(err).String(), Message: err.Error()}
	}
	return event
}
