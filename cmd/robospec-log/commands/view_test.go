package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/robospec/robospec-go/pkg/log"
)

func TestFormatEncodeEvent(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)

	var buf bytes.Buffer
	formatEvent(&buf, encodeEvent(ts, "abcdef1234567890"))
	output := buf.String()

	wantLines := []string{
		"2026-01-28T10:15:32.123456Z [sess:abcdef12] ENCODE OK 0001 0017 0041 8000 4000",
		"  Robot: Iontec / KR 20 R3100 Iontec",
		"  Gripper: Hydraulic",
		"  Protocols: WIFI",
		"  Addons: FSD",
		"  Catalog: default",
		"  Duration: 12.000us",
	}
	for _, want := range wantLines {
		if !strings.Contains(output, want+"\n") {
			t.Errorf("expected line %q in output:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Error:") {
		t.Error("unexpected error line for successful event")
	}
}

func TestFormatRejectedEvent(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	formatEvent(&buf, rejectedDecode(ts, "short", "zz", "malformed_hex"))
	output := buf.String()

	if !strings.HasPrefix(output, "2026-01-28T10:00:00.000000Z [sess:short] DECODE REJECTED\n") {
		t.Errorf("unexpected header: %q", output)
	}
	if !strings.Contains(output, "  Input: zz\n") {
		t.Error("expected input line")
	}
	if !strings.Contains(output, "  Error: [malformed_hex] rejected zz\n") {
		t.Error("expected error line")
	}
	if strings.Contains(output, "Robot:") {
		t.Error("unexpected selection lines for rejected event")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{1500 * time.Nanosecond, "1.500us"},
		{2500 * time.Microsecond, "2.500ms"},
		{1500 * time.Millisecond, "1.500s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestGroupCode(t *testing.T) {
	if got := groupCode(scenarioCode); got != "0001 0017 0041 8000 4000" {
		t.Errorf("groupCode = %q", got)
	}
	if got := groupCode("abc"); got != "abc" {
		t.Errorf("groupCode should pass through short input, got %q", got)
	}
}

func TestRunViewWithFilter(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		encodeEvent(ts, "sess-1"),
		rejectedDecode(ts, "sess-1", "zz", "malformed_hex"),
		encodeEvent(ts.Add(time.Second), "sess-1"),
	}
	path := createTestLogFile(t, events)

	outcome := log.OutcomeRejected
	var buf bytes.Buffer
	if err := RunView(path, log.Filter{Outcome: &outcome}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if strings.Count(output, "[sess:") != 1 {
		t.Errorf("expected 1 event, got:\n%s", output)
	}
	if !strings.Contains(output, "DECODE REJECTED") {
		t.Errorf("expected rejected decode, got:\n%s", output)
	}
}

func TestRunViewEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunView(path, log.Filter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
