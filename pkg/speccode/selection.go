package speccode

import (
	"slices"

	"github.com/robospec/robospec-go/pkg/catalog"
)

// Selection is the set of five attribute choices a Code represents.
type Selection struct {
	RobotType    string   `json:"robot_type" yaml:"robot_type"`
	RobotVariant string   `json:"robot_variant" yaml:"robot_variant"`
	Gripper      string   `json:"gripper" yaml:"gripper"`
	Protocols    []string `json:"protocols" yaml:"protocols"`
	Addons       []string `json:"addons" yaml:"addons"`
}

// Missing returns the fields that are empty, in encoding order.
func (s Selection) Missing() []catalog.Kind {
	var missing []catalog.Kind
	if s.RobotType == "" {
		missing = append(missing, catalog.KindRobotType)
	}
	if s.RobotVariant == "" {
		missing = append(missing, catalog.KindVariant)
	}
	if s.Gripper == "" {
		missing = append(missing, catalog.KindGripper)
	}
	if len(s.Protocols) == 0 {
		missing = append(missing, catalog.KindProtocol)
	}
	if len(s.Addons) == 0 {
		missing = append(missing, catalog.KindAddon)
	}
	return missing
}

// Complete reports whether all five fields are set.
func (s Selection) Complete() bool {
	return len(s.Missing()) == 0
}

// Equal reports whether s and o select the same attributes. Protocol and
// addon lists are compared as sets.
func (s Selection) Equal(o Selection) bool {
	return s.RobotType == o.RobotType &&
		s.RobotVariant == o.RobotVariant &&
		s.Gripper == o.Gripper &&
		sameSet(s.Protocols, o.Protocols) &&
		sameSet(s.Addons, o.Addons)
}

// Clone returns a deep copy of s.
func (s Selection) Clone() Selection {
	s.Protocols = slices.Clone(s.Protocols)
	s.Addons = slices.Clone(s.Addons)
	return s
}

func sameSet(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	other := make(map[string]bool, len(b))
	for _, v := range b {
		if !set[v] {
			return false
		}
		other[v] = true
	}
	return len(set) == len(other)
}
