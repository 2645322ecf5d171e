package commands

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/use-agent/gamexport/csvout"
	"github.com/use-agent/gamexport/models"
)

// renderTable prints the records of res with a summary footer.
func renderTable(w io.Writer, res *models.ExportResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("%s: %d games", res.Username, len(res.Records))
	t.AppendHeader(table.Row{"#", "Title", "Rating"})

	for i, r := range res.Records {
		t.AppendRow(table.Row{i + 1, r.Title, csvout.FormatRating(r.Rating)})
	}

	t.AppendFooter(table.Row{"", "stopped: " + string(res.StopReason), ""})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
