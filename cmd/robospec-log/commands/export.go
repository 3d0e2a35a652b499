package commands

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/robospec/robospec-go/pkg/log"
)

// RunExport exports the events of path matching filter in format to output,
// or to stdout when output is empty.
func RunExport(path, format, output string, filter log.Filter, stdout io.Writer) error {
	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	w := stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "csv" {
		return exportCSV(reader, w)
	}
	return exportJSONL(reader, w)
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

var csvHeader = []string{
	"timestamp", "session_id", "operation", "outcome", "catalog", "input", "code",
	"robot_type", "robot_variant", "gripper", "protocols", "addons",
	"error_kind", "error", "duration_ns",
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		var robotType, variant, gripper, protocols, addons string
		if s := event.Selection; s != nil {
			robotType, variant, gripper = s.RobotType, s.RobotVariant, s.Gripper
			protocols = strings.Join(s.Protocols, ";")
			addons = strings.Join(s.Addons, ";")
		}
		var errKind, errMsg string
		if e := event.Error; e != nil {
			errKind, errMsg = e.Kind, e.Message
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.SessionID,
			event.Operation.String(),
			event.Outcome.String(),
			event.Catalog,
			event.Input,
			event.Code,
			robotType,
			variant,
			gripper,
			protocols,
			addons,
			errKind,
			errMsg,
			strconv.FormatInt(event.Duration.Nanoseconds(), 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
