package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/robospec/robospec-go/pkg/log"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [sess:id] OPERATION OUTCOME code
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [sess:%s] %s %s", ts, shortenSessionID(event.SessionID), event.Operation, event.Outcome)
	if event.Code != "" {
		fmt.Fprintf(w, " %s", groupCode(event.Code))
	}
	fmt.Fprintln(w)

	if event.Input != "" {
		fmt.Fprintf(w, "  Input: %s\n", event.Input)
	}
	if s := event.Selection; s != nil {
		fmt.Fprintf(w, "  Robot: %s / %s\n", s.RobotType, s.RobotVariant)
		fmt.Fprintf(w, "  Gripper: %s\n", s.Gripper)
		fmt.Fprintf(w, "  Protocols: %s\n", strings.Join(s.Protocols, ", "))
		fmt.Fprintf(w, "  Addons: %s\n", strings.Join(s.Addons, ", "))
	}
	if e := event.Error; e != nil {
		fmt.Fprintf(w, "  Error: [%s] %s\n", e.Kind, e.Message)
	}
	if event.Catalog != "" {
		fmt.Fprintf(w, "  Catalog: %s\n", event.Catalog)
	}
	if event.Duration > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(event.Duration))
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// groupCode splits a padded code into its five 4-digit fields.
func groupCode(code string) string {
	if len(code) != 20 {
		return code
	}
	return strings.Join([]string{code[0:4], code[4:8], code[8:12], code[12:16], code[16:20]}, " ")
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// RunView writes the events of path matching filter to output.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		formatEvent(output, event)
	}

	return nil
}
