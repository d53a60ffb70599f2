package output

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/daryltucker/bench-runner/internal/model"
)

// RenderSummary prints a human readable table of the run to w.
func RenderSummary(w io.Writer, rows []model.ResultRow, status model.ExecutionStatus, elapsed time.Duration) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Inference Benchmark Results (%s)", formatDuration(elapsed)))

	t.AppendHeader(table.Row{"#", "Framework", "Model", "Device", "Batch", "Duration", "FPS", "Status", "Error"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Model", WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Batch", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "FPS", Align: text.AlignRight},
		{Name: "Error", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	failed := 0
	for _, r := range rows {
		if r.Status != model.Success {
			failed++
		}
		fps := "-"
		if r.Metrics.FPS > 0 {
			fps = fmt.Sprintf("%.2f", r.Metrics.FPS)
		}
		t.AppendRow(table.Row{
			r.Index + 1,
			r.Test.Framework,
			r.Test.Model.Name,
			r.Test.Parameters.Device,
			r.Test.Parameters.BatchSize,
			formatDuration(r.Duration),
			fps,
			r.Status.String(),
			r.Error,
		})
	}

	if status == model.Success {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL", "", "", "", "", formatDuration(elapsed),
		fmt.Sprintf("%d/%d passed", len(rows)-failed, len(rows)),
		status.String(), "",
	})

	t.Render()
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
