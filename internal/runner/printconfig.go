package runner

import (
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/donaldgifford/elmfmt/internal/config"
)

// PrintConfig writes the config that applies to each input as a table. A
// file input uses its directory; no inputs means the working directory.
func PrintConfig(w io.Writer, stderr io.Writer, inputs []string, configPath string) int {
	resolver := config.NewResolver(configPath)

	if len(inputs) == 0 {
		inputs = []string{"."}
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"INPUT", "CONFIG", "INDENTATION", "IF STYLE", "TUPLE STYLE", "NEWLINES"})

	exitCode := ExitOK
	for _, input := range inputs {
		dir := input
		if info, err := os.Stat(input); err != nil {
			writeErr(stderr, "elmfmt: %v\n", err)
			exitCode = ExitFailure
			continue
		} else if !info.IsDir() {
			dir = filepath.Dir(input)
		}

		res, err := resolver.Lookup(dir)
		if err != nil {
			writeErr(stderr, "elmfmt: %v\n", err)
			exitCode = ExitFailure
			continue
		}

		source := res.Path
		if source == "" {
			source = "(defaults)"
		}
		tw.AppendRow(table.Row{
			input,
			source,
			strconv.Itoa(res.Config.Indentation),
			res.Config.IfStyle.String(),
			res.Config.TupleStyle.String(),
			strconv.Itoa(res.Config.NewlinesBetweenDecls),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	tw.SetStyle(table.StyleLight)
	tw.Render()

	return exitCode
}
