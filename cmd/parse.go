package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/codeloom-cli/internal/codegen"
	"github.com/KaramelBytes/codeloom-cli/internal/render"
)

var (
	parseJSON      bool
	parseLanguages bool
	parseFirstWins bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Split a saved model response into files without calling any API",
	Example: `  codeloom parse response.txt
  pbpaste | codeloom parse --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if len(args) == 0 || args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		files := codegen.Parse(string(data))
		out := cmd.OutOrStdout()
		if parseJSON {
			if parseFirstWins {
				files = codegen.Dedupe(files, codegen.FirstWins)
			}
			return writeRecordsJSON(out, files)
		}
		if len(files) == 0 {
			fmt.Fprintln(out, "No files found. Each file must start with a '// path/to/file.ext' or '# path/to/file.ext' line.")
			return nil
		}
		policy := codegen.LastWins
		if parseFirstWins {
			policy = codegen.FirstWins
		}
		unique := codegen.Dedupe(files, policy)
		if d := len(files) - len(unique); d > 0 {
			fmt.Fprintf(out, "⚠ %d duplicate path(s) collapsed\n", d)
		}
		return render.Tree(out, codegen.BuildTree(unique), render.TreeOptions{ShowLanguages: parseLanguages})
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "emit file records as JSON")
	parseCmd.Flags().BoolVar(&parseLanguages, "languages", false, "annotate files with their detected language")
	parseCmd.Flags().BoolVar(&parseFirstWins, "first-wins", false, "keep the first of duplicate paths instead of the last")
}
