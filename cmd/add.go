package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	addProjectName string
	addDocDesc     string
)

var addCmd = &cobra.Command{
	Use:   "add <schema-file>...",
	Short: "Add schema documents (SQL, JSON diagram export, YAML, Markdown) to a project",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProjectByName(addProjectName)
		if err != nil {
			return err
		}
		for _, file := range args {
			d, err := p.AddDocument(file, addDocDesc)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Schema added: %s (≈%d tokens)\n", d.Name, d.Tokens)
		}
		return p.Save()
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addProjectName, "project", "p", "", "project name")
	addCmd.Flags().StringVar(&addDocDesc, "desc", "", "document description")
}
