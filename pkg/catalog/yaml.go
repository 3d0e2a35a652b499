package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlCatalog is the YAML structure of a catalog file.
type yamlCatalog struct {
	Name       string          `yaml:"name"`
	RobotTypes []yamlRobotType `yaml:"robot_types"`
	Variants   []yamlEntry     `yaml:"variants"`
	Grippers   []yamlEntry     `yaml:"grippers"`
	Protocols  []string        `yaml:"protocols"`
	Addons     []string        `yaml:"addons"`
}

type yamlRobotType struct {
	Name     string   `yaml:"name"`
	Code     uint16   `yaml:"code"`
	Variants []string `yaml:"variants,omitempty,flow"`
}

type yamlEntry struct {
	Name string `yaml:"name"`
	Code uint16 `yaml:"code"`
}

// lineKey locates a named entry in the source document.
type lineKey struct {
	table Kind
	name  string
}

var yamlSections = map[string]Kind{
	"robot_types": KindRobotType,
	"variants":    KindVariant,
	"grippers":    KindGripper,
	"protocols":   KindProtocol,
	"addons":      KindAddon,
}

// Parse parses a catalog from YAML data. Validation errors are prefixed with
// the line of the offending entry.
func Parse(data []byte) (*Catalog, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("YAML parse error: %w", ErrEmptyCatalog)
	}

	var y yamlCatalog
	if err := root.Content[0].Decode(&y); err != nil {
		return nil, fmt.Errorf("YAML decode error: %w", err)
	}

	def := Definition{
		Name:      y.Name,
		Protocols: y.Protocols,
		Addons:    y.Addons,
	}
	for _, rt := range y.RobotTypes {
		def.RobotTypes = append(def.RobotTypes, RobotTypeDef{
			Name:     rt.Name,
			Code:     AttrCode(rt.Code),
			Variants: rt.Variants,
		})
	}
	for _, e := range y.Variants {
		def.Variants = append(def.Variants, Entry{Name: e.Name, Code: AttrCode(e.Code)})
	}
	for _, e := range y.Grippers {
		def.Grippers = append(def.Grippers, Entry{Name: e.Name, Code: AttrCode(e.Code)})
	}

	c, err := New(def)
	if err != nil {
		var de *DefinitionError
		if errors.As(err, &de) {
			if line := entryLines(&root)[lineKey{de.Table, de.Name}]; line > 0 {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		return nil, err
	}
	return c, nil
}

// LoadFile reads and parses a catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Marshal renders c in the YAML catalog format.
func Marshal(c *Catalog) ([]byte, error) {
	def := c.Definition()
	y := yamlCatalog{
		Name:      def.Name,
		Protocols: def.Protocols,
		Addons:    def.Addons,
	}
	for _, rt := range def.RobotTypes {
		y.RobotTypes = append(y.RobotTypes, yamlRobotType{
			Name:     rt.Name,
			Code:     uint16(rt.Code),
			Variants: rt.Variants,
		})
	}
	for _, e := range def.Variants {
		y.Variants = append(y.Variants, yamlEntry{Name: e.Name, Code: uint16(e.Code)})
	}
	for _, e := range def.Grippers {
		y.Grippers = append(y.Grippers, yamlEntry{Name: e.Name, Code: uint16(e.Code)})
	}
	return yaml.Marshal(y)
}

// entryLines maps every named entry to its source line. A duplicated name
// maps to its last occurrence, which is where validation rejects it.
func entryLines(root *yaml.Node) map[lineKey]int {
	lines := make(map[lineKey]int)
	if len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return lines
	}
	doc := root.Content[0]
	for i := 0; i < len(doc.Content)-1; i += 2 {
		kind, ok := yamlSections[doc.Content[i].Value]
		seq := doc.Content[i+1]
		if !ok || seq.Kind != yaml.SequenceNode {
			continue
		}
		for _, item := range seq.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				lines[lineKey{kind, item.Value}] = item.Line
			case yaml.MappingNode:
				for j := 0; j < len(item.Content)-1; j += 2 {
					if item.Content[j].Value == "name" {
						lines[lineKey{kind, item.Content[j+1].Value}] = item.Line
					}
				}
			}
		}
	}
	return lines
}
