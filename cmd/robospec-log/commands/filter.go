// Package commands implements the robospec-log CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/robospec/robospec-go/pkg/log"
	"github.com/robospec/robospec-go/pkg/speccode"
)

// FilterOptions holds the textual filter flags shared by all commands.
type FilterOptions struct {
	SessionID string
	Operation string
	Outcome   string
	ErrorKind string
	Code      string
	TimeStart string
	TimeEnd   string
}

// BuildFilter parses opts into a log.Filter. Codes are accepted in any form
// the codec parses and matched in their padded form.
func BuildFilter(opts FilterOptions) (log.Filter, error) {
	filter := log.Filter{
		SessionID: opts.SessionID,
		ErrorKind: opts.ErrorKind,
	}

	if opts.Operation != "" {
		op, err := log.ParseOperation(opts.Operation)
		if err != nil {
			return filter, err
		}
		filter.Operation = &op
	}

	if opts.Outcome != "" {
		o, err := log.ParseOutcome(opts.Outcome)
		if err != nil {
			return filter, err
		}
		filter.Outcome = &o
	}

	if opts.Code != "" {
		code, err := speccode.ParseCode(opts.Code)
		if err != nil {
			return filter, fmt.Errorf("invalid code filter: %w", err)
		}
		filter.Code = code.Padded()
	}

	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}

	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	return filter, nil
}

// RunFilter writes the events of path matching filter to output and reports
// the count to w.
func RunFilter(path, output string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	logger, err := log.NewFileLogger(output)
	if err != nil {
		return fmt.Errorf("failed to create output logger: %w", err)
	}
	defer logger.Close()

	count := 0
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		logger.Log(event)
		count++
	}

	fmt.Fprintf(w, "Filtered %d events to %s\n", count, output)
	return nil
}
