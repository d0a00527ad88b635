package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	listProjects    bool
	listDocs        bool
	listGenerations bool
	listProjName    string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, schema documents, or generations",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		selected := 0
		for _, b := range []bool{listProjects, listDocs, listGenerations} {
			if b {
				selected++
			}
		}
		if selected != 1 {
			return fmt.Errorf("specify exactly one of --projects, --docs or --generations")
		}
		if listProjects {
			return listAllProjects(out)
		}
		p, err := loadProjectByName(listProjName)
		if err != nil {
			return err
		}
		if listDocs {
			if len(p.Documents) == 0 {
				fmt.Fprintln(out, "(no documents)")
				return nil
			}
			t := newTable()
			t.AppendHeader(table.Row{"ID", "Name", "Kind", "Tokens", "Description"})
			for _, d := range p.SortedDocuments() {
				t.AppendRow(table.Row{shortID(d.ID), d.Name, d.Kind, d.Tokens, d.Description})
			}
			fmt.Fprintln(out, t.Render())
			return nil
		}
		if len(p.Generations) == 0 {
			fmt.Fprintln(out, "(no generations)")
			return nil
		}
		t := newTable()
		t.AppendHeader(table.Row{"ID", "Created", "Model", "Files", "Stack"})
		for i := len(p.Generations) - 1; i >= 0; i-- {
			g := p.Generations[i]
			t.AppendRow(table.Row{shortID(g.ID), g.CreatedAt.Format("2006-01-02 15:04"), g.Model, len(g.Files), g.Stack})
		}
		fmt.Fprintln(out, t.Render())
		return nil
	},
}

// newTable returns a borderless table writer for list-style output.
func newTable() table.Writer {
	t := table.NewWriter()
	style := table.StyleLight
	style.Options.DrawBorder = false
	style.Options.SeparateColumns = false
	style.Box.PaddingLeft = ""
	style.Box.PaddingRight = "  "
	t.SetStyle(style)
	return t
}

func listAllProjects(out io.Writer) error {
	root, err := defaultProjectsDir()
	if err != nil {
		return err
	}
	dirs, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	found := false
	for _, e := range dirs {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), "project.json")); err == nil {
			fmt.Fprintf(out, "- %s\n", e.Name())
			found = true
		}
	}
	if !found {
		fmt.Fprintln(out, "(no projects)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listProjects, "projects", false, "list projects")
	listCmd.Flags().BoolVar(&listDocs, "docs", false, "list schema documents in a project")
	listCmd.Flags().BoolVar(&listGenerations, "generations", false, "list generations of a project, newest first")
	listCmd.Flags().StringVarP(&listProjName, "project", "p", "", "project name for --docs/--generations")
}
