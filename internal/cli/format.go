package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
)

type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer) *table {
	return &table{tw: tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)}
}

func (t *table) row(cols ...string) {
	fmt.Fprintln(t.tw, strings.Join(cols, "\t"))
}

func (t *table) flush() {
	t.tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// clock renders a timestamp as wall time in the local zone.
func clock(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("15:04")
}

func breakSpan(r *attendance.Record) string {
	switch {
	case r.BreakStart == nil:
		return "-"
	case r.BreakEnd == nil:
		return clock(r.BreakStart) + " - now"
	}
	return clock(r.BreakStart) + " - " + clock(r.BreakEnd)
}

func phaseLabel(p attendance.Phase) string {
	return strings.ReplaceAll(string(p), "_", " ")
}

// workedLabel marks durations that were clamped from inconsistent timestamps.
func workedLabel(w attendance.WorkingTime) string {
	if w.Flagged {
		return w.String() + " (!)"
	}
	return w.String()
}

func hoursLabel(h float64) string {
	return fmt.Sprintf("%.1fh", h)
}

func ago(t time.Time, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

func bytesLabel(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
