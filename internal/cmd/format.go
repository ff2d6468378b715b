package cmd

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/jimezsa/imsctl/internal/export"
)

// resolveFormat picks the output format: global --json and --plain win,
// then --format, then a table on terminals and CSV otherwise.
func resolveFormat(ctx *Context, flag string) (export.Format, error) {
	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}
	if flag != "" {
		format, ok := export.ParseFormat(flag)
		if !ok {
			return "", fmt.Errorf("unsupported format %q", flag)
		}
		return format, nil
	}
	if isTTY(ctx.Out) {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

func isTTY(out io.Writer) bool {
	output := termenv.NewOutput(out)
	return output.ColorProfile() != termenv.Ascii
}
