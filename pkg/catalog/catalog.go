package catalog

import (
	"errors"
	"fmt"
)

// MaxFlags is the number of bit positions available to a flag table.
const MaxFlags = 16

// Catalog construction errors.
var (
	ErrEmptyCatalog   = errors.New("empty table")
	ErrEmptyName      = errors.New("empty name")
	ErrZeroCode       = errors.New("code 0 is reserved")
	ErrDuplicateName  = errors.New("duplicate name")
	ErrDuplicateCode  = errors.New("duplicate code")
	ErrTooManyEntries = errors.New("too many entries")
	ErrUnknownVariant = errors.New("unknown variant")
	ErrFamilyMismatch = errors.New("variant does not belong to robot type")
)

// AttrCode is the 16-bit code of a robot type, variant or gripper.
type AttrCode uint16

// Kind identifies one of the five catalog tables.
type Kind uint8

const (
	KindRobotType Kind = iota
	KindVariant
	KindGripper
	KindProtocol
	KindAddon
)

// Kinds lists all table kinds in encoding order.
var Kinds = []Kind{KindRobotType, KindVariant, KindGripper, KindProtocol, KindAddon}

// String returns the table name used in YAML and error messages.
func (k Kind) String() string {
	switch k {
	case KindRobotType:
		return "robot_type"
	case KindVariant:
		return "variant"
	case KindGripper:
		return "gripper"
	case KindProtocol:
		return "protocol"
	case KindAddon:
		return "addon"
	default:
		return "unknown"
	}
}

// Label returns the human-readable field label shown in reports.
func (k Kind) Label() string {
	switch k {
	case KindRobotType:
		return "Robot Type"
	case KindVariant:
		return "Robot Name"
	case KindGripper:
		return "Gripper"
	case KindProtocol:
		return "Communication Protocols"
	case KindAddon:
		return "Addons"
	default:
		return "Unknown"
	}
}

// IsFlag reports whether the table is a bitmask table.
func (k Kind) IsFlag() bool {
	return k == KindProtocol || k == KindAddon
}

// Entry is a single named code in a coded table.
type Entry struct {
	Name string
	Code AttrCode
}

// DefinitionError reports an invalid entry in a catalog definition.
type DefinitionError struct {
	Table Kind
	Name  string
	Err   error
}

func (e *DefinitionError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Table, e.Name, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// Table is an ordered, immutable coded table.
type Table struct {
	kind    Kind
	entries []Entry
	byName  map[string]AttrCode
	byCode  map[AttrCode]string
}

func newTable(kind Kind, entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, &DefinitionError{Table: kind, Err: ErrEmptyCatalog}
	}
	t := &Table{
		kind:    kind,
		entries: make([]Entry, 0, len(entries)),
		byName:  make(map[string]AttrCode, len(entries)),
		byCode:  make(map[AttrCode]string, len(entries)),
	}
	for _, e := range entries {
		if e.Name == "" {
			return nil, &DefinitionError{Table: kind, Err: ErrEmptyName}
		}
		if e.Code == 0 {
			return nil, &DefinitionError{Table: kind, Name: e.Name, Err: ErrZeroCode}
		}
		if _, dup := t.byName[e.Name]; dup {
			return nil, &DefinitionError{Table: kind, Name: e.Name, Err: ErrDuplicateName}
		}
		if other, dup := t.byCode[e.Code]; dup {
			return nil, &DefinitionError{Table: kind, Name: e.Name,
				Err: fmt.Errorf("%w: %d already assigned to %q", ErrDuplicateCode, e.Code, other)}
		}
		t.entries = append(t.entries, e)
		t.byName[e.Name] = e.Code
		t.byCode[e.Code] = e.Name
	}
	return t, nil
}

// Kind returns the table kind.
func (t *Table) Kind() Kind { return t.kind }

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Lookup returns the code assigned to name.
func (t *Table) Lookup(name string) (AttrCode, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// Name returns the entry name assigned to code.
func (t *Table) Name(code AttrCode) (string, bool) {
	n, ok := t.byCode[code]
	return n, ok
}

// Entries returns a copy of the entries in declaration order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Names returns the entry names in declaration order.
func (t *Table) Names() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Name
	}
	return out
}

// FlagSet is an ordered, immutable flag table of at most MaxFlags names.
type FlagSet struct {
	kind  Kind
	names []string
	bitOf map[string]int
}

func newFlagSet(kind Kind, names []string) (*FlagSet, error) {
	if len(names) == 0 {
		return nil, &DefinitionError{Table: kind, Err: ErrEmptyCatalog}
	}
	if len(names) > MaxFlags {
		return nil, &DefinitionError{Table: kind,
			Err: fmt.Errorf("%w: %d (max %d)", ErrTooManyEntries, len(names), MaxFlags)}
	}
	f := &FlagSet{
		kind:  kind,
		names: make([]string, 0, len(names)),
		bitOf: make(map[string]int, len(names)),
	}
	for i, n := range names {
		if n == "" {
			return nil, &DefinitionError{Table: kind, Err: ErrEmptyName}
		}
		if _, dup := f.bitOf[n]; dup {
			return nil, &DefinitionError{Table: kind, Name: n, Err: ErrDuplicateName}
		}
		f.names = append(f.names, n)
		f.bitOf[n] = i
	}
	return f, nil
}

// Kind returns the table kind.
func (f *FlagSet) Kind() Kind { return f.kind }

// Len returns the number of flags.
func (f *FlagSet) Len() int { return len(f.names) }

// Position returns the 0-based position of name, where 0 is the most
// significant bit of the mask.
func (f *FlagSet) Position(name string) (int, bool) {
	p, ok := f.bitOf[name]
	return p, ok
}

// At returns the name at position pos.
func (f *FlagSet) At(pos int) (string, bool) {
	if pos < 0 || pos >= len(f.names) {
		return "", false
	}
	return f.names[pos], true
}

// Mask returns the single-bit mask for name.
func (f *FlagSet) Mask(name string) (uint16, bool) {
	p, ok := f.bitOf[name]
	if !ok {
		return 0, false
	}
	return 1 << (MaxFlags - 1 - p), true
}

// ValidMask returns the mask with every catalog position set.
func (f *FlagSet) ValidMask() uint16 {
	var m uint16
	for i := range f.names {
		m |= 1 << (MaxFlags - 1 - i)
	}
	return m
}

// Names returns the flag names in declaration order.
func (f *FlagSet) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// RobotTypeDef declares a robot type and the variants offered for it.
type RobotTypeDef struct {
	Name     string
	Code     AttrCode
	Variants []string
}

// Definition is the raw input for New.
type Definition struct {
	Name       string
	RobotTypes []RobotTypeDef
	Variants   []Entry
	Grippers   []Entry
	Protocols  []string
	Addons     []string
}

// Catalog is the immutable set of five tables used to encode and decode
// robot specification codes.
type Catalog struct {
	name       string
	robotTypes *Table
	variants   *Table
	grippers   *Table
	protocols  *FlagSet
	addons     *FlagSet

	families map[string][]string
	familyOf map[string]string
}

// New validates def and builds a Catalog from it.
func New(def Definition) (*Catalog, error) {
	types := make([]Entry, len(def.RobotTypes))
	for i, rt := range def.RobotTypes {
		types[i] = Entry{Name: rt.Name, Code: rt.Code}
	}

	c := &Catalog{
		name:     def.Name,
		families: make(map[string][]string),
		familyOf: make(map[string]string),
	}

	var err error
	if c.robotTypes, err = newTable(KindRobotType, types); err != nil {
		return nil, err
	}
	if c.variants, err = newTable(KindVariant, def.Variants); err != nil {
		return nil, err
	}
	if c.grippers, err = newTable(KindGripper, def.Grippers); err != nil {
		return nil, err
	}
	if c.protocols, err = newFlagSet(KindProtocol, def.Protocols); err != nil {
		return nil, err
	}
	if c.addons, err = newFlagSet(KindAddon, def.Addons); err != nil {
		return nil, err
	}

	// Codes must be unique across the three coded tables.
	owner := make(map[AttrCode]Entry)
	for _, t := range []*Table{c.robotTypes, c.variants, c.grippers} {
		for _, e := range t.entries {
			if prev, dup := owner[e.Code]; dup {
				return nil, &DefinitionError{Table: t.kind, Name: e.Name,
					Err: fmt.Errorf("%w: %d already assigned to %q", ErrDuplicateCode, e.Code, prev.Name)}
			}
			owner[e.Code] = e
		}
	}

	for _, rt := range def.RobotTypes {
		for _, v := range rt.Variants {
			if _, ok := c.variants.Lookup(v); !ok {
				return nil, &DefinitionError{Table: KindRobotType, Name: rt.Name,
					Err: fmt.Errorf("%w: %q", ErrUnknownVariant, v)}
			}
			if prev, dup := c.familyOf[v]; dup && prev != rt.Name {
				return nil, &DefinitionError{Table: KindRobotType, Name: rt.Name,
					Err: fmt.Errorf("%w: variant %q already listed under %q", ErrDuplicateName, v, prev)}
			}
			if _, dup := c.familyOf[v]; dup {
				continue
			}
			c.familyOf[v] = rt.Name
			c.families[rt.Name] = append(c.families[rt.Name], v)
		}
	}

	return c, nil
}

// Name returns the catalog name.
func (c *Catalog) Name() string { return c.name }

// RobotTypes returns the robot type table.
func (c *Catalog) RobotTypes() *Table { return c.robotTypes }

// Variants returns the robot variant (robot name) table.
func (c *Catalog) Variants() *Table { return c.variants }

// Grippers returns the gripper table.
func (c *Catalog) Grippers() *Table { return c.grippers }

// Protocols returns the communication protocol flag table.
func (c *Catalog) Protocols() *FlagSet { return c.protocols }

// Addons returns the addon flag table.
func (c *Catalog) Addons() *FlagSet { return c.addons }

// Table returns the coded table for kind, or nil for flag kinds.
func (c *Catalog) Table(kind Kind) *Table {
	switch kind {
	case KindRobotType:
		return c.robotTypes
	case KindVariant:
		return c.variants
	case KindGripper:
		return c.grippers
	default:
		return nil
	}
}

// Flags returns the flag table for kind, or nil for coded kinds.
func (c *Catalog) Flags(kind Kind) *FlagSet {
	switch kind {
	case KindProtocol:
		return c.protocols
	case KindAddon:
		return c.addons
	default:
		return nil
	}
}

// Names returns the entry names of any table in declaration order.
func (c *Catalog) Names(kind Kind) []string {
	if t := c.Table(kind); t != nil {
		return t.Names()
	}
	if f := c.Flags(kind); f != nil {
		return f.Names()
	}
	return nil
}

// VariantsOf returns the variants listed for robotType. An unknown type or a
// type without a family yields nil.
func (c *Catalog) VariantsOf(robotType string) []string {
	vs := c.families[robotType]
	if len(vs) == 0 {
		return nil
	}
	out := make([]string, len(vs))
	copy(out, vs)
	return out
}

// TypeOfVariant returns the robot type whose family lists variant.
func (c *Catalog) TypeOfVariant(variant string) (string, bool) {
	t, ok := c.familyOf[variant]
	return t, ok
}

// CheckFamily returns ErrFamilyMismatch when variant is listed under a robot
// type other than robotType. Variants that belong to no family pass.
func (c *Catalog) CheckFamily(robotType, variant string) error {
	owner, ok := c.familyOf[variant]
	if !ok || owner == robotType {
		return nil
	}
	return fmt.Errorf("%w: %q is listed under %q, not %q", ErrFamilyMismatch, variant, owner, robotType)
}

// Definition returns a copy of the catalog as a Definition.
func (c *Catalog) Definition() Definition {
	def := Definition{
		Name:      c.name,
		Variants:  c.variants.Entries(),
		Grippers:  c.grippers.Entries(),
		Protocols: c.protocols.Names(),
		Addons:    c.addons.Names(),
	}
	for _, e := range c.robotTypes.entries {
		def.RobotTypes = append(def.RobotTypes, RobotTypeDef{
			Name:     e.Name,
			Code:     e.Code,
			Variants: c.VariantsOf(e.Name),
		})
	}
	return def
}
