// Package report renders a selection and its code as the "Robot
// Specifications" table in text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robospec/robospec-go/pkg/catalog"
	"github.com/robospec/robospec-go/pkg/speccode"
)

// Title heads every report.
const Title = "Robot Specifications"

// HexLabel is the label of the code row.
const HexLabel = "Hexadecimal Value"

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name. An empty name is FormatText.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format: %s (valid: text, json, yaml)", s)
	}
}

// Options configures report contents.
type Options struct {
	// Uppercase renders hex digits in upper case.
	Uppercase bool

	// Bits adds the 80-bit binary form of the code.
	Bits bool
}

// Row is one labelled line of the table.
type Row struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Report is a rendered selection and code.
type Report struct {
	Title     string             `json:"title" yaml:"title"`
	Catalog   string             `json:"catalog,omitempty" yaml:"catalog,omitempty"`
	Selection speccode.Selection `json:"selection" yaml:"selection"`
	Code      string             `json:"code" yaml:"code"`
	Padded    string             `json:"padded" yaml:"padded"`
	Bits      string             `json:"bits,omitempty" yaml:"bits,omitempty"`
	Rows      []Row              `json:"rows" yaml:"rows"`
	Warnings  []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// New builds the report for sel and its code. Family mismatches between the
// robot type and variant are reported as warnings.
func New(cat *catalog.Catalog, sel speccode.Selection, code speccode.Code, opts Options) *Report {
	hex, padded := code.Hex(), code.Padded()
	if opts.Uppercase {
		hex, padded = strings.ToUpper(hex), strings.ToUpper(padded)
	}

	r := &Report{
		Title:     Title,
		Selection: sel.Clone(),
		Code:      "0x" + hex,
		Padded:    padded,
	}
	if opts.Bits {
		r.Bits = code.Bits()
	}
	if cat != nil {
		r.Catalog = cat.Name()
		if err := cat.CheckFamily(sel.RobotType, sel.RobotVariant); err != nil {
			r.Warnings = append(r.Warnings, err.Error())
		}
	}

	r.Rows = []Row{
		{catalog.KindRobotType.Label(), sel.RobotType},
		{catalog.KindVariant.Label(), sel.RobotVariant},
		{catalog.KindGripper.Label(), sel.Gripper},
		{catalog.KindProtocol.Label(), strings.Join(sel.Protocols, ", ")},
		{catalog.KindAddon.Label(), strings.Join(sel.Addons, ", ")},
		{HexLabel, r.Code},
	}
	return r
}

// Write renders r to w in format f.
func (r *Report) Write(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		return r.writeText(w)
	default:
		return fmt.Errorf("unknown format: %s", f)
	}
}

// WriteFile renders r to path, replacing any existing file.
func (r *Report) WriteFile(path string, f Format) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := r.Write(file, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (r *Report) writeText(w io.Writer) error {
	width := 0
	for _, row := range r.Rows {
		width = max(width, len(row.Label))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s\n", r.Title, strings.Repeat("=", len(r.Title)))
	for _, row := range r.Rows {
		fmt.Fprintf(&sb, "%-*s  %s\n", width, row.Label, row.Value)
	}
	if r.Bits != "" {
		fmt.Fprintf(&sb, "%-*s  %s\n", width, "Binary", r.Bits)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(&sb, "\nWarning: %s\n", warn)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
