package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/robospec/robospec-go/pkg/log"
)

func readAll(t *testing.T, path string) []log.Event {
	t.Helper()
	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	events, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("failed to read events: %v", err)
	}
	return events
}

func TestBuildFilter(t *testing.T) {
	filter, err := BuildFilter(FilterOptions{
		SessionID: "sess-1",
		Operation: "Decode",
		Outcome:   "rejected",
		ErrorKind: "out_of_range",
		Code:      "0x10017004180004000",
		TimeStart: "2026-01-28T10:00:00Z",
		TimeEnd:   "2026-01-28T11:00:00Z",
	})
	if err != nil {
		t.Fatalf("BuildFilter failed: %v", err)
	}

	if filter.SessionID != "sess-1" || filter.ErrorKind != "out_of_range" {
		t.Errorf("unexpected string fields: %+v", filter)
	}
	if filter.Operation == nil || *filter.Operation != log.OpDecode {
		t.Errorf("expected decode operation, got %v", filter.Operation)
	}
	if filter.Outcome == nil || *filter.Outcome != log.OutcomeRejected {
		t.Errorf("expected rejected outcome, got %v", filter.Outcome)
	}
	if filter.Code != scenarioCode {
		t.Errorf("expected padded code %s, got %s", scenarioCode, filter.Code)
	}
	if filter.TimeStart == nil || filter.TimeEnd == nil {
		t.Fatal("expected time range")
	}
	if filter.TimeEnd.Sub(*filter.TimeStart) != time.Hour {
		t.Errorf("unexpected time range: %v - %v", filter.TimeStart, filter.TimeEnd)
	}
}

func TestBuildFilterEmpty(t *testing.T) {
	filter, err := BuildFilter(FilterOptions{})
	if err != nil {
		t.Fatalf("BuildFilter failed: %v", err)
	}
	if !filter.Matches(encodeEvent(time.Now(), "any")) {
		t.Error("empty filter should match every event")
	}
}

func TestBuildFilterErrors(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
		want string
	}{
		{"operation", FilterOptions{Operation: "normalize"}, "unknown operation"},
		{"outcome", FilterOptions{Outcome: "maybe"}, "unknown outcome"},
		{"code", FilterOptions{Code: "xyz"}, "invalid code filter"},
		{"time start", FilterOptions{TimeStart: "yesterday"}, "invalid time-start"},
		{"time end", FilterOptions{TimeEnd: "2026-13-01"}, "invalid time-end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildFilter(tt.opts)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestFilterBySession(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 0, time.UTC)
	events := []log.Event{
		encodeEvent(ts, "sess-1"),
		encodeEvent(ts, "sess-2"),
		rejectedDecode(ts, "sess-1", "zz", "malformed_hex"),
	}
	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.rtrace")

	var buf bytes.Buffer
	if err := RunFilter(path, outPath, log.Filter{SessionID: "sess-1"}, &buf); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	got := readAll(t, outPath)
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	for _, e := range got {
		if e.SessionID != "sess-1" {
			t.Errorf("expected sess-1, got %s", e.SessionID)
		}
	}
	if !strings.Contains(buf.String(), "Filtered 2 events") {
		t.Errorf("unexpected summary: %q", buf.String())
	}
}

func TestFilterByErrorKind(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		rejectedDecode(ts, "s", "zz", "malformed_hex"),
		rejectedDecode(ts, "s", "0xFFFF", "unknown_attribute"),
		encodeEvent(ts, "s"),
		rejectedDecode(ts, "s", "0x1", "incomplete_selection"),
	}
	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.rtrace")

	if err := RunFilter(path, outPath, log.Filter{ErrorKind: "unknown_attribute"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	got := readAll(t, outPath)
	if len(got) != 1 || got[0].Input != "0xFFFF" {
		t.Errorf("expected the single unknown_attribute event, got %+v", got)
	}
}

func TestFilterByTimeRange(t *testing.T) {
	base := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		encodeEvent(base, "s"),
		encodeEvent(base.Add(time.Minute), "s"),
		encodeEvent(base.Add(2*time.Minute), "s"),
		encodeEvent(base.Add(3*time.Minute), "s"),
	}
	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.rtrace")

	start := base.Add(time.Minute)
	end := base.Add(3 * time.Minute)
	if err := RunFilter(path, outPath, log.Filter{TimeStart: &start, TimeEnd: &end}, &bytes.Buffer{}); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	got := readAll(t, outPath)
	if len(got) != 2 {
		t.Fatalf("expected 2 events in range, got %d", len(got))
	}
	if !got[0].Timestamp.Equal(start) {
		t.Errorf("expected first event at %v, got %v", start, got[0].Timestamp)
	}
}

func TestFilterMissingInput(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "filtered.rtrace")
	err := RunFilter(filepath.Join(t.TempDir(), "missing.rtrace"), outPath, log.Filter{}, &bytes.Buffer{})
	if err == nil {
		t.Error("expected error for missing input")
	}
}
