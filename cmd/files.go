package cmd

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/codeloom-cli/internal/codegen"
	"github.com/KaramelBytes/codeloom-cli/internal/project"
	"github.com/KaramelBytes/codeloom-cli/internal/render"
)

var (
	filesProjectName string
	filesGeneration  string
	filesLanguages   bool
	filesShowRaw     bool
	filesStyle       string
	filesWordWrap    int
)

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Browse the files of a generation",
}

var filesTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the generated files as a directory tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, g, err := loadGeneration()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(g.Files) == 0 {
			fmt.Fprintln(out, "(no files in this generation)")
			return nil
		}
		return render.Tree(out, g.Tree(), render.TreeOptions{
			RootLabel:     p.Name + "@" + shortID(g.ID),
			ShowLanguages: filesLanguages,
		})
	},
}

var filesShowCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Print one generated file with syntax highlighting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := findFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if filesShowRaw {
			fmt.Fprintln(out, rec.Content)
			return nil
		}
		s, err := render.File(rec, render.FileOptions{Style: filesStyle, WordWrap: filesWordWrap})
		if err != nil {
			return err
		}
		fmt.Fprint(out, s)
		return nil
	},
}

var filesCopyCmd = &cobra.Command{
	Use:   "copy <path>",
	Short: "Copy one generated file to the system clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := findFile(args[0])
		if err != nil {
			return err
		}
		if err := copyToClipboard(rec.Content); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Copied %s (%d bytes)\n", rec.Path, len(rec.Content))
		return nil
	},
}

var filesRawCmd = &cobra.Command{
	Use:   "raw",
	Short: "Print the unparsed model response of a generation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, g, err := loadGeneration()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), g.Raw)
		return nil
	},
}

func loadGeneration() (*project.Project, *project.Generation, error) {
	p, err := loadProjectByName(filesProjectName)
	if err != nil {
		return nil, nil, err
	}
	g, err := p.Generation(filesGeneration)
	if err != nil {
		return nil, nil, err
	}
	return p, g, nil
}

func findFile(path string) (codegen.FileRecord, error) {
	_, g, err := loadGeneration()
	if err != nil {
		return codegen.FileRecord{}, err
	}
	n := g.Tree().Find(path)
	if n == nil {
		return codegen.FileRecord{}, fmt.Errorf("file %q not found in generation %s", path, shortID(g.ID))
	}
	if n.IsDir() {
		return codegen.FileRecord{}, fmt.Errorf("%s is a directory; use 'codeloom files tree'", strings.TrimSuffix(path, "/"))
	}
	return *n.File, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(filesCmd)
	filesCmd.AddCommand(filesTreeCmd, filesShowCmd, filesCopyCmd, filesRawCmd)
	filesCmd.PersistentFlags().StringVarP(&filesProjectName, "project", "p", "", "project name")
	filesCmd.PersistentFlags().StringVar(&filesGeneration, "generation", "", "generation ID or prefix (default latest)")
	filesTreeCmd.Flags().BoolVar(&filesLanguages, "languages", false, "annotate files with their detected language")
	filesShowCmd.Flags().BoolVar(&filesShowRaw, "raw", false, "print content without highlighting")
	filesShowCmd.Flags().StringVar(&filesStyle, "style", "", "glamour style (dark, light, notty, ...); default follows the terminal")
	filesShowCmd.Flags().IntVar(&filesWordWrap, "wrap", 120, "word wrap width")
}
