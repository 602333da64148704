package app

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// PrintSummary выводит итог запуска: предупреждения по источникам
// и таблицу новых ссылок либо сообщение, что нового нет.
func PrintSummary(w io.Writer, run *RunResult) {
	for _, res := range run.Failures() {
		fmt.Fprintf(w, "[WARN] %s: %v\n", res.Source, res.Err)
	}

	items := run.Snapshot.Items
	if len(items) == 0 {
		fmt.Fprintln(w, "No new items (every link is already in the ledger).")
		return
	}

	fmt.Fprintf(w, "Found %d NEW items:\n", len(items))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Source", "Title", "URL"})
	for _, it := range items {
		t.AppendRow(table.Row{it.Source, it.Title, it.URL})
	}
	t.Render()
}
