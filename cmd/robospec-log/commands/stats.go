package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/robospec/robospec-go/pkg/log"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents       int
	EventsByOperation map[log.Operation]int
	EventsByOutcome   map[log.Outcome]int
	RejectionsByKind  map[string]int
	Sessions          map[string]*SessionStats
	DistinctCodes     map[string]int
	TotalDuration     time.Duration
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single codec session.
type SessionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Rejected  int
	Catalog   string
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByOperation: make(map[log.Operation]int),
		EventsByOutcome:   make(map[log.Outcome]int),
		RejectionsByKind:  make(map[string]int),
		Sessions:          make(map[string]*SessionStats),
		DistinctCodes:     make(map[string]int),
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByOperation[event.Operation]++
	s.EventsByOutcome[event.Outcome]++
	s.TotalDuration += event.Duration

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	sess, ok := s.Sessions[event.SessionID]
	if !ok {
		sess = &SessionStats{
			FirstSeen: event.Timestamp,
			LastSeen:  event.Timestamp,
			Catalog:   event.Catalog,
		}
		s.Sessions[event.SessionID] = sess
	}
	sess.Events++
	if event.Timestamp.After(sess.LastSeen) {
		sess.LastSeen = event.Timestamp
	}

	if event.Outcome == log.OutcomeRejected {
		sess.Rejected++
		kind := "unknown"
		if event.Error != nil && event.Error.Kind != "" {
			kind = event.Error.Kind
		}
		s.RejectionsByKind[kind]++
	} else if event.Code != "" {
		s.DistinctCodes[event.Code]++
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Robot Specification Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	if stats.TotalEvents > 0 {
		avg := stats.TotalDuration / time.Duration(stats.TotalEvents)
		fmt.Fprintf(w, "Average Call: %s\n", formatDuration(avg))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Operation:")
	for _, op := range []log.Operation{log.OpEncode, log.OpDecode} {
		if count := stats.EventsByOperation[op]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", op.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Outcome:")
	for _, o := range []log.Outcome{log.OutcomeOK, log.OutcomeRejected} {
		if count := stats.EventsByOutcome[o]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", o.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.RejectionsByKind) > 0 {
		kinds := make([]string, 0, len(stats.RejectionsByKind))
		for k := range stats.RejectionsByKind {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)

		fmt.Fprintln(w, "Rejections by Kind:")
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-22s %d\n", k+":", stats.RejectionsByKind[k])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Distinct Codes: %d\n", len(stats.DistinctCodes))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		type sessInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, s := range sessions {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, %d rejected, duration %s\n",
				shortenSessionID(s.id), s.stats.Events, s.stats.Rejected, duration)
			if s.stats.Catalog != "" {
				fmt.Fprintf(w, "           Catalog: %s\n", s.stats.Catalog)
			}
		}
	}
}
