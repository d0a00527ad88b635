package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	instrProjectName string
	instrAppend      bool
	instrClear       bool
)

var instructCmd = &cobra.Command{
	Use:   "instruct [requirements]",
	Short: "Set additional requirements for code generation (auth, pagination, ...)",
	Example: `  codeloom instruct -p shop "Use JWT auth on all write endpoints"
  codeloom instruct -p shop --append "Paginate list endpoints"
  codeloom instruct -p shop --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if instrClear == (len(args) == 1) {
			return errors.New("pass requirements text or --clear")
		}
		p, err := loadProjectByName(instrProjectName)
		if err != nil {
			return err
		}
		switch {
		case instrClear:
			p.SetInstructions("")
		case instrAppend:
			p.AppendInstructions(args[0])
		default:
			p.SetInstructions(args[0])
		}
		if err := p.Save(); err != nil {
			return err
		}
		if p.Instructions == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Instructions cleared")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Instructions updated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(instructCmd)
	instructCmd.Flags().StringVarP(&instrProjectName, "project", "p", "", "project name")
	instructCmd.Flags().BoolVar(&instrAppend, "append", false, "add to the existing requirements instead of replacing them")
	instructCmd.Flags().BoolVar(&instrClear, "clear", false, "remove all requirements")
}
