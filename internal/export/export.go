package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/muesli/termenv"

	"github.com/jimezsa/imsctl/internal/schema"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

// ParseFormat maps a flag value to a Format. Empty input yields ok=false.
func ParseFormat(value string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatTable:
		return FormatTable, true
	case FormatCSV:
		return FormatCSV, true
	case FormatJSON:
		return FormatJSON, true
	case FormatMarkdown, "markdown":
		return FormatMarkdown, true
	case FormatTSV:
		return FormatTSV, true
	default:
		return "", false
	}
}

type WriteOptions struct {
	ColorEnabled bool
}

const headerColor = "#87CEEB"

// Table is one page of records prepared for output. Rows hold the
// display text of each column; Records keep the raw API values for JSON.
type Table struct {
	Headers []string
	IDs     []string
	Rows    [][]string
	Records []schema.Record
	// Page is zero-based.
	Page       int
	TotalPages int
}

// Pair is one labelled value of a single record.
type Pair struct {
	Label string
	Value string
}

func WriteTable(w io.Writer, t Table, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, pageJSON{
			Items:      nonNil(t.Records),
			Page:       t.Page,
			TotalPages: t.TotalPages,
		})
	case FormatCSV:
		return writeCSV(w, t, ',')
	case FormatTSV:
		return writeCSV(w, t, '\t')
	case FormatMarkdown:
		return writeMarkdown(w, t)
	default:
		return writeText(w, t, opts)
	}
}

type pageJSON struct {
	Items      []schema.Record `json:"items"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
}

func nonNil(recs []schema.Record) []schema.Record {
	if recs == nil {
		return []schema.Record{}
	}
	return recs
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(w io.Writer, t Table, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(append([]string{"id"}, t.Headers...)); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := writer.Write(append([]string{idAt(t, i)}, row...)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeText(w io.Writer, t Table, opts WriteOptions) error {
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No records.")
		return err
	}
	output := termenv.NewOutput(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := strings.Join(append([]string{"ID"}, t.Headers...), "\t")
	if opts.ColorEnabled {
		header = output.String(header).Bold().Foreground(output.Color(headerColor)).String()
	}
	fmt.Fprintln(tw, header)
	for i, row := range t.Rows {
		cells := make([]string, 0, len(row)+1)
		cells = append(cells, idAt(t, i))
		for _, cell := range row {
			cells = append(cells, safe(cell))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if t.TotalPages > 0 {
		_, err := fmt.Fprintf(w, "Page %d of %d\n", t.Page+1, t.TotalPages)
		return err
	}
	return nil
}

func writeMarkdown(w io.Writer, t Table) error {
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No records.")
		return err
	}
	headers := append([]string{"ID"}, t.Headers...)
	lines := []string{
		"| " + strings.Join(headers, " | ") + " |",
		"|" + strings.Repeat(" --- |", len(headers)),
	}
	for i, row := range t.Rows {
		cells := []string{markdownCell(idAt(t, i))}
		for _, cell := range row {
			cells = append(cells, markdownCell(cell))
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// WritePairs prints one record as label/value lines. JSON output writes
// raw instead.
func WritePairs(w io.Writer, pairs []Pair, raw schema.Record, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		if raw == nil {
			raw = schema.Record{}
		}
		return writeJSON(w, raw)
	case FormatCSV, FormatTSV:
		writer := csv.NewWriter(w)
		if format == FormatTSV {
			writer.Comma = '\t'
		}
		if err := writer.Write([]string{"field", "value"}); err != nil {
			return err
		}
		for _, p := range pairs {
			if err := writer.Write([]string{p.Label, p.Value}); err != nil {
				return err
			}
		}
		writer.Flush()
		return writer.Error()
	case FormatMarkdown:
		for _, p := range pairs {
			if _, err := fmt.Fprintf(w, "- **%s**: %s\n", safe(p.Label), markdownCell(p.Value)); err != nil {
				return err
			}
		}
		return nil
	default:
		output := termenv.NewOutput(w)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, p := range pairs {
			label := safe(p.Label)
			if opts.ColorEnabled {
				label = output.String(label).Foreground(output.Color(headerColor)).String()
			}
			fmt.Fprintf(tw, "%s\t%s\n", label, safe(p.Value))
		}
		return tw.Flush()
	}
}

func idAt(t Table, i int) string {
	if i < len(t.IDs) {
		return t.IDs[i]
	}
	return ""
}

func safe(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func markdownCell(value string) string {
	return strings.ReplaceAll(safe(value), "|", `\|`)
}
