package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/homestack-labs/homeql/internal/catalog"
	"github.com/homestack-labs/homeql/internal/plan"
	"github.com/homestack-labs/homeql/internal/session"
	"github.com/homestack-labs/homeql/internal/validate"
)

// renderResult writes a query result in the requested format.
func renderResult(w io.Writer, res *session.Result, format string) error {
	if !res.IsSelect {
		_, _ = fmt.Fprintf(w, "OK (%d rows affected, %s)\n", res.RowsAffected, res.Elapsed.Round(time.Microsecond))
		return nil
	}

	switch format {
	case "json":
		if err := renderJSON(w, res); err != nil {
			return err
		}
	case "csv":
		renderCSV(w, res)
	case "md", "markdown":
		renderMarkdown(w, res)
	default:
		renderTable(w, res)
	}

	if format == "table" || format == "" {
		renderStats(w, res)
	}
	return nil
}

func renderTable(w io.Writer, res *session.Result) {
	if len(res.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, r := range res.Rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows, %s)\n", len(res.Rows), res.Elapsed.Round(time.Microsecond))
}

func renderJSON(w io.Writer, res *session.Result) error {
	out := make([]map[string]any, 0, len(res.Rows))
	for _, r := range res.Rows {
		row := make(map[string]any, len(res.Columns))
		for i, col := range res.Columns {
			row[col] = r[i]
		}
		out = append(out, row)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderCSV(w io.Writer, res *session.Result) {
	_, _ = fmt.Fprintln(w, strings.Join(res.Columns, ","))
	for _, r := range res.Rows {
		values := make([]string, len(r))
		for i, v := range r {
			values[i] = escapeCSV(formatValue(v))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
}

func renderMarkdown(w io.Writer, res *session.Result) {
	if len(res.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(res.Columns, " | "))
	seps := make([]string, len(res.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, r := range res.Rows {
		values := make([]string, len(r))
		for i, v := range r {
			values[i] = formatValue(v)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
}

// renderStats prints min/max/avg for each column whose values are all numeric.
func renderStats(w io.Writer, res *session.Result) {
	if len(res.Rows) == 0 {
		return
	}

	for i, col := range res.Columns {
		minV, maxV, sum, n, ok := columnNumbers(res.Rows, i)
		if !ok || n == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s: min=%s max=%s avg=%s\n",
			col, formatFloat(minV), formatFloat(maxV), formatFloat(sum/float64(n)))
	}
}

func columnNumbers(rows [][]any, idx int) (minV, maxV, sum float64, n int, ok bool) {
	for _, r := range rows {
		v := r[idx]
		if v == nil {
			continue
		}
		f, isNum := asFloat(v)
		if !isNum {
			return 0, 0, 0, 0, false
		}
		if n == 0 || f < minV {
			minV = f
		}
		if n == 0 || f > maxV {
			maxV = f
		}
		sum += f
		n++
	}
	return minV, maxV, sum, n, true
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// renderDiagnostic prints a validation diagnostic with its ranked candidates.
func renderDiagnostic(w io.Writer, d *validate.Diagnostic) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", d.Message)
	if len(d.Candidates) > 0 {
		_, _ = fmt.Fprintf(w, "  candidates: %s\n", strings.Join(d.Candidates, ", "))
	}
}

// renderPlan prints execution plan steps in order.
func renderPlan(w io.Writer, steps []plan.Step, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(steps)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Operation", "Detail"})
	for _, s := range steps {
		t.AppendRow(table.Row{s.Order, s.Operation, s.Detail})
	}
	t.Render()
	return nil
}

// renderCatalog prints the table list or a single table's columns.
func renderCatalog(w io.Writer, cat *catalog.Catalog, tableName, format string) error {
	if tableName == "" {
		if format == "json" {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(cat.TableNames())
		}
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Table", "Columns"})
		for _, tbl := range cat.Tables() {
			t.AppendRow(table.Row{tbl.Name, len(tbl.Columns)})
		}
		t.Render()
		return nil
	}

	tbl, ok := cat.Table(tableName)
	if !ok {
		candidates := validate.Rank(tableName, cat.TableNames())
		if len(candidates) > 0 {
			return fmt.Errorf("unknown table %q (did you mean %q?)", tableName, candidates[0])
		}
		return fmt.Errorf("unknown table %q", tableName)
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tbl)
	}

	_, _ = fmt.Fprintf(w, "Table: %s\n", tbl.Name)
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Type"})
	for _, col := range tbl.Columns {
		t.AppendRow(table.Row{col.Name, string(col.Type)})
	}
	t.Render()
	return nil
}
