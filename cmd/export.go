package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/codeloom-cli/internal/export"
)

var (
	exportProjectName string
	exportGeneration  string
	exportZip         string
	exportDir         string
	exportForce       bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the files of a generation to a zip archive or directory",
	Example: `  codeloom export -p shop --zip shop.zip
  codeloom export -p shop --dir ./shop-api --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (exportZip == "") == (exportDir == "") {
			return errors.New("exactly one of --zip or --dir is required")
		}
		p, err := loadProjectByName(exportProjectName)
		if err != nil {
			return err
		}
		g, err := p.Generation(exportGeneration)
		if err != nil {
			return err
		}
		if len(g.Files) == 0 {
			return fmt.Errorf("generation %s has no files to export", shortID(g.ID))
		}
		out := cmd.OutOrStdout()
		if exportZip != "" {
			n, err := export.WriteZipFile(exportZip, g.Files)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote %d files to %s\n", n, exportZip)
			return nil
		}
		n, err := export.WriteDir(exportDir, g.Files, exportForce)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Wrote %d files to %s\n", n, exportDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportProjectName, "project", "p", "", "project name")
	exportCmd.Flags().StringVar(&exportGeneration, "generation", "", "generation ID or prefix (default latest)")
	exportCmd.Flags().StringVar(&exportZip, "zip", "", "write a zip archive to this path")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "write files under this directory")
	exportCmd.Flags().BoolVar(&exportForce, "force", false, "overwrite existing files in --dir")
}
