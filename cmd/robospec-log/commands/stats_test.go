package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/robospec/robospec-go/pkg/log"
)

func TestStatsCountsByOperationAndOutcome(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		encodeEvent(ts, "sess-1"),
		encodeEvent(ts, "sess-1"),
		rejectedDecode(ts, "sess-1", "zz", "malformed_hex"),
	}
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, log.Filter{}, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 3",
		"ENCODE:      2",
		"DECODE:      1",
		"OK:          2",
		"REJECTED:    1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestStatsCountsRejectionsByKind(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		rejectedDecode(ts, "s", "zz", "malformed_hex"),
		rejectedDecode(ts, "s", "yy", "malformed_hex"),
		rejectedDecode(ts, "s", "0xFFFF", "unknown_attribute"),
		{Timestamp: ts, SessionID: "s", Operation: log.OpEncode, Outcome: log.OutcomeRejected},
	}
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, log.Filter{}, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "Rejections by Kind:") {
		t.Fatalf("expected rejection section:\n%s", output)
	}
	if !strings.Contains(output, "malformed_hex:         2") {
		t.Errorf("expected malformed_hex count:\n%s", output)
	}
	if !strings.Contains(output, "unknown_attribute:     1") {
		t.Errorf("expected unknown_attribute count:\n%s", output)
	}
	if !strings.Contains(output, "unknown:               1") {
		t.Errorf("expected unknown count for record without error kind:\n%s", output)
	}
}

func TestStatsCountsSessionsAndCodes(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	other := encodeEvent(ts.Add(2*time.Second), "sess-bbbb-2222")
	other.Code = "00010017004180000000"
	events := []log.Event{
		encodeEvent(ts, "sess-aaaa-1111"),
		encodeEvent(ts.Add(time.Second), "sess-aaaa-1111"),
		other,
		rejectedDecode(ts.Add(3*time.Second), "sess-bbbb-2222", "zz", "malformed_hex"),
	}
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, log.Filter{}, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "Sessions: 2") {
		t.Errorf("expected 2 sessions:\n%s", output)
	}
	if !strings.Contains(output, "Distinct Codes: 2") {
		t.Errorf("expected 2 distinct codes:\n%s", output)
	}
	if !strings.Contains(output, "[sess-aaa] 2 events, 0 rejected, duration 1s") {
		t.Errorf("expected first session summary:\n%s", output)
	}
	if !strings.Contains(output, "[sess-bbb] 2 events, 1 rejected, duration 1s") {
		t.Errorf("expected second session summary:\n%s", output)
	}
	if strings.Index(output, "[sess-aaa]") > strings.Index(output, "[sess-bbb]") {
		t.Error("sessions should be ordered by first event")
	}
}

func TestStatsTimeRange(t *testing.T) {
	start := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		encodeEvent(start.Add(5*time.Minute), "s"),
		encodeEvent(start, "s"),
		encodeEvent(start.Add(10*time.Minute), "s"),
	}
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, log.Filter{}, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "Time Range: 2026-01-28T10:00:00Z to 2026-01-28T10:10:00Z") {
		t.Errorf("unexpected time range:\n%s", output)
	}
	if !strings.Contains(output, "Duration:   10m0s") {
		t.Errorf("unexpected duration:\n%s", output)
	}
	if !strings.Contains(output, "Average Call: 12.000us") {
		t.Errorf("unexpected average:\n%s", output)
	}
}

func TestStatsEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, log.Filter{}, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "Total Events: 0") {
		t.Errorf("expected zero events:\n%s", output)
	}
	if strings.Contains(output, "Time Range") {
		t.Error("time range should be omitted for empty trace")
	}
}
