package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/robospec/robospec-go/pkg/catalog"
	"github.com/robospec/robospec-go/pkg/report"
)

// CatalogOptions configures the catalog command.
type CatalogOptions struct {
	commonFlags

	Kind string // robot_type, variant, gripper, protocol, addon
}

// CatalogOutput is the JSON form of a catalog listing.
type CatalogOutput struct {
	Name   string        `json:"name"`
	Tables []TableOutput `json:"tables"`
}

// TableOutput lists one catalog table.
type TableOutput struct {
	Kind    string        `json:"kind"`
	Label   string        `json:"label"`
	Entries []EntryOutput `json:"entries"`
}

// EntryOutput is one catalog entry. Value is the 16-bit code for coded
// tables and the bit mask for flag tables.
type EntryOutput struct {
	Name     string   `json:"name"`
	Value    string   `json:"value"`
	Variants []string `json:"variants,omitempty"`
}

// RunCatalog runs the catalog command.
func RunCatalog(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("catalog", pflag.ContinueOnError)
	opts := CatalogOptions{}
	opts.register(fs)
	fs.StringVarP(&opts.Kind, "kind", "k", "", "Show one table: robot_type, variant, gripper, protocol, addon")

	if done, code := parseFlags(fs, args, stdout, stderr, printCatalogUsage); done {
		return code
	}

	var kinds []catalog.Kind
	if opts.Kind != "" {
		k, ok := parseKind(opts.Kind)
		if !ok {
			fmt.Fprintf(stderr, "Error: unknown kind: %s\n", opts.Kind)
			return exitCommandError
		}
		kinds = []catalog.Kind{k}
	} else {
		kinds = catalog.Kinds
	}

	rt, err := setup(fs, &opts.commonFlags, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer rt.Close()

	output := buildCatalogOutput(rt.catalog, kinds, rt.cfg.Uppercase)

	switch rt.format {
	case report.FormatJSON:
		data, _ := json.MarshalIndent(output, "", "  ")
		fmt.Fprintln(stdout, string(data))
	case report.FormatYAML:
		if opts.Kind != "" {
			fmt.Fprintln(stderr, "Error: --kind is not supported with --format yaml")
			return exitCommandError
		}
		data, err := catalog.Marshal(rt.catalog)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		stdout.Write(data)
	default:
		printCatalogText(stdout, output)
	}
	return exitSuccess
}

func parseKind(s string) (catalog.Kind, bool) {
	s = strings.ToLower(strings.ReplaceAll(s, "-", "_"))
	for _, k := range catalog.Kinds {
		if k.String() == s || k.String()+"s" == s {
			return k, true
		}
	}
	return 0, false
}

func buildCatalogOutput(cat *catalog.Catalog, kinds []catalog.Kind, upper bool) CatalogOutput {
	hex := func(v uint16) string {
		s := fmt.Sprintf("0x%04x", v)
		if upper {
			s = "0x" + strings.ToUpper(s[2:])
		}
		return s
	}

	output := CatalogOutput{Name: cat.Name()}
	for _, k := range kinds {
		table := TableOutput{Kind: k.String(), Label: k.Label()}
		if k.IsFlag() {
			flags := cat.Flags(k)
			for _, name := range flags.Names() {
				mask, _ := flags.Mask(name)
				table.Entries = append(table.Entries, EntryOutput{Name: name, Value: hex(mask)})
			}
		} else {
			for _, e := range cat.Table(k).Entries() {
				entry := EntryOutput{Name: e.Name, Value: hex(uint16(e.Code))}
				if k == catalog.KindRobotType {
					entry.Variants = cat.VariantsOf(e.Name)
				}
				table.Entries = append(table.Entries, entry)
			}
		}
		output.Tables = append(output.Tables, table)
	}
	return output
}

func printCatalogText(w io.Writer, output CatalogOutput) {
	fmt.Fprintf(w, "Catalog: %s\n", output.Name)
	for _, table := range output.Tables {
		fmt.Fprintf(w, "\n%s (%d):\n", table.Label, len(table.Entries))
		for _, e := range table.Entries {
			if len(e.Variants) > 0 {
				fmt.Fprintf(w, "  %s  %s  [%s]\n", e.Value, e.Name, strings.Join(e.Variants, ", "))
				continue
			}
			fmt.Fprintf(w, "  %s  %s\n", e.Value, e.Name)
		}
	}
}

func printCatalogUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: robospec catalog [options]

Options:
  -k, --kind         Show one table (robot_type, variant, gripper, protocol, addon)
  -f, --format       Output format (text, json, yaml) [default: text]
      --uppercase    Render hex values in upper case
      --catalog      Catalog YAML file
  -c, --config       Configuration file

Examples:
  robospec catalog
  robospec catalog --kind protocol
  robospec catalog --format yaml > my-catalog.yaml`)
}
