package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// printer writes operator status lines. Colors are dropped automatically
// when the output is not a terminal.
type printer struct {
	w io.Writer
}

func newPrinter(cmd *cobra.Command) printer {
	return printer{w: cmd.OutOrStdout()}
}

func (p printer) info(format string, args ...any) {
	color.New(color.FgCyan).Fprintf(p.w, format+"\n", args...)
}

func (p printer) success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(p.w, "✓ "+format+"\n", args...)
}

func (p printer) warn(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(p.w, "⚠ "+format+"\n", args...)
}

func (p printer) fail(format string, args ...any) {
	color.New(color.FgRed).Fprintf(p.w, "✗ "+format+"\n", args...)
}

func (p printer) plain(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}
