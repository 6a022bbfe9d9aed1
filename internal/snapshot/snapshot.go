// Package snapshot takes one point-in-time picture of the listening ports:
// scan, sort, enrich, classify, filter.
package snapshot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lu-zhengda/ports/internal/detect"
	"github.com/lu-zhengda/ports/internal/logs"
	"github.com/lu-zhengda/ports/internal/port"
)

// Enricher fills in optional process fields, returning one error per field
// it could not read.
type Enricher interface {
	Enrich(ctx context.Context, p *port.ProcessRecord) []error
}

// Options wires the pipeline.
type Options struct {
	Scanner  port.Scanner
	Enricher Enricher
	Filter   Filter
	Logger   *logs.Logger
	Now      func() time.Time
}

// Snapshot is the result of one Take.
type Snapshot struct {
	Entries  []port.PortEntry
	Warnings []string
	TakenAt  time.Time
}

// Take runs the pipeline once. Only a scanner failure is an error;
// enrichment problems are logged and collected in Warnings.
func Take(ctx context.Context, opts Options) (*Snapshot, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logs.Discard()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	entries, err := opts.Scanner.ListPorts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan ports: %w", err)
	}
	logger.Debug("lsof reported %d listeners", len(entries))

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Port < entries[j].Port
	})

	// Port and exclude filters need nothing from ps; apply them first so
	// hidden processes are never queried.
	entries = keep(entries, opts.Filter.matchBeforeEnrich)

	snap := &Snapshot{TakenAt: now()}
	for i := range entries {
		p := &entries[i].Process
		if opts.Enricher != nil {
			for _, w := range opts.Enricher.Enrich(ctx, p) {
				msg := fmt.Sprintf("failed to get details for PID %d: %v", p.PID, w)
				logger.Warn("%s", msg)
				snap.Warnings = append(snap.Warnings, msg)
			}
		}
		detect.ClassifyEntry(&entries[i])
	}

	snap.Entries = keep(entries, opts.Filter.matchAfterEnrich)
	logger.Debug("%d entries after filtering", len(snap.Entries))
	return snap, nil
}

// Filter narrows a snapshot. Zero values match everything.
type Filter struct {
	Port    uint16
	Process string        // case-insensitive substring of name or command
	Type    *port.AppType // exact classification
	Exclude []string      // process names to hide, case-insensitive
}

// Match reports whether e passes every filter.
func (f Filter) Match(e port.PortEntry) bool {
	return f.matchBeforeEnrich(e) && f.matchAfterEnrich(e)
}

func (f Filter) matchBeforeEnrich(e port.PortEntry) bool {
	if f.Port != 0 && e.Port != f.Port {
		return false
	}
	for _, name := range f.Exclude {
		if strings.EqualFold(name, e.Process.Name) {
			return false
		}
	}
	return true
}

func (f Filter) matchAfterEnrich(e port.PortEntry) bool {
	if f.Process != "" {
		q := strings.ToLower(f.Process)
		if !strings.Contains(strings.ToLower(e.Process.Name), q) &&
			!strings.Contains(strings.ToLower(e.Process.Command), q) {
			return false
		}
	}
	if f.Type != nil {
		if e.AppType == nil || *e.AppType != *f.Type {
			return false
		}
	}
	return true
}

func keep(entries []port.PortEntry, match func(port.PortEntry) bool) []port.PortEntry {
	out := entries[:0]
	for _, e := range entries {
		if match(e) {
			out = append(out, e)
		}
	}
	return out
}
