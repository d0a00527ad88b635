package cmd

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/codeloom-cli/internal/stack"
)

var (
	stackProject   string
	stackLanguage  string
	stackFramework string
	stackORM       string
	stackDatabase  string
)

var stackCmd = &cobra.Command{
	Use:   "stack",
	Short: "Show or choose the backend stack a project generates",
}

var stackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported languages and their framework/ORM/database options",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := newTable()
		t.AppendHeader(table.Row{"Language", "Frameworks", "ORMs", "Databases"})
		for _, lang := range stack.Languages() {
			o, _ := stack.Options(lang)
			t.AppendRow(table.Row{lang, strings.Join(o.Frameworks, ", "), strings.Join(o.ORMs, ", "), strings.Join(o.Databases, ", ")})
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var stackShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a project's stack",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProjectByName(stackProject)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "language: %s\nframework: %s\norm: %s\ndatabase: %s\n",
			p.Stack.Language, p.Stack.Framework, p.Stack.ORM, p.Stack.Database)
		return nil
	},
}

var stackSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Choose a project's stack; unspecified parts default to the language's first option",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProjectByName(stackProject)
		if err != nil {
			return err
		}
		sel := stack.Selection{Language: p.Stack.Language, Framework: stackFramework, ORM: stackORM, Database: stackDatabase}
		if stackLanguage != "" {
			sel.Language = stackLanguage
		}
		if err := p.SetStack(sel); err != nil {
			return err
		}
		if err := p.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Stack set: %s\n", p.Stack)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stackCmd)
	stackCmd.AddCommand(stackListCmd, stackShowCmd, stackSetCmd)
	for _, c := range []*cobra.Command{stackShowCmd, stackSetCmd} {
		c.Flags().StringVarP(&stackProject, "project", "p", "", "project name")
	}
	stackSetCmd.Flags().StringVar(&stackLanguage, "language", "", "backend language")
	stackSetCmd.Flags().StringVar(&stackFramework, "framework", "", "web framework")
	stackSetCmd.Flags().StringVar(&stackORM, "orm", "", "ORM / database library")
	stackSetCmd.Flags().StringVar(&stackDatabase, "database", "", "database engine")
}
