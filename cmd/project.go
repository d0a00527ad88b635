package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/codeloom-cli/internal/project"
)

var (
	pmProject   string
	pmClear     bool
	pmMaxTokens int
	pmTemp      float64
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage per-project generation settings",
}

var projectSetModelCmd = &cobra.Command{
	Use:   "set-model [model]",
	Short: "Set or clear the model a project generates with",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !pmClear && len(args) == 0 {
			return errors.New("model is required unless --clear is set")
		}
		p, err := loadProjectConfig(pmProject)
		if err != nil {
			return err
		}
		if pmClear {
			p.Config.Model = ""
		} else {
			p.Config.Model = args[0]
		}
		if err := p.Save(); err != nil {
			return err
		}
		if p.Config.Model == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s now uses the configured default model\n", p.Name)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s generates with %s\n", p.Name, p.Config.Model)
		return nil
	},
}

var projectSetParamsCmd = &cobra.Command{
	Use:   "set-params",
	Short: "Set a project's max tokens and temperature (0 inherits the global config)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		if !f.Changed("max-tokens") && !f.Changed("temp") {
			return errors.New("nothing to set: pass --max-tokens and/or --temp")
		}
		if pmMaxTokens < 0 || pmTemp < 0 {
			return errors.New("--max-tokens and --temp must not be negative")
		}
		p, err := loadProjectConfig(pmProject)
		if err != nil {
			return err
		}
		if f.Changed("max-tokens") {
			p.Config.MaxTokens = pmMaxTokens
		}
		if f.Changed("temp") {
			p.Config.Temperature = pmTemp
		}
		if err := p.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: max_tokens=%d temperature=%.2f\n", p.Name, p.Config.MaxTokens, p.Config.Temperature)
		return nil
	},
}

func loadProjectConfig(name string) (*project.Project, error) {
	p, err := loadProjectByName(name)
	if err != nil {
		return nil, err
	}
	if p.Config == nil {
		p.Config = &project.ProjectConfig{}
	}
	return p, nil
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectSetModelCmd, projectSetParamsCmd)

	projectCmd.PersistentFlags().StringVarP(&pmProject, "project", "p", "", "project name")
	projectSetModelCmd.Flags().BoolVar(&pmClear, "clear", false, "clear the project's model override")
	projectSetParamsCmd.Flags().IntVar(&pmMaxTokens, "max-tokens", 0, "max tokens for generated responses")
	projectSetParamsCmd.Flags().Float64Var(&pmTemp, "temp", 0, "sampling temperature")
}
