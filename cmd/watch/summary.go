package watch

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hnwatch/hnwatch/internal/metrics"
)

// newSummaryTable builds the end-of-run summary table.
func newSummaryTable(s metrics.Snapshot) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.SetTitle("hnwatch run summary")

	t.AppendRows([]table.Row{
		{"Uptime", time.Since(s.StartTime).Round(time.Second).String()},
		{"Poll ticks", s.Ticks},
		{"Failed ticks", s.FailedTicks},
		{"Stories dispatched", s.StoriesDispatched},
		{"Stories failed", s.StoriesFailed},
		{"Downloads attempted", s.DownloadsAttempted},
		{"Downloads succeeded", s.DownloadsSucceeded},
		{"Downloads failed", s.DownloadsFailed},
		{"Bytes written", formatBytes(s.BytesWritten)},
	})

	return t
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024

	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
