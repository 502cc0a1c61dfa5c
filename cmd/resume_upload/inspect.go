package main

import (
	"fmt"
	"io"

	"github.com/jonathan/resume-upload/internal/files"
	"github.com/jonathan/resume-upload/internal/observability"
	"github.com/spf13/cobra"
)

var inspectFile string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show what would be uploaded for a file",
	Long:  `Detect the file's MIME type and, for PDFs, count its pages. Nothing is sent to the parsing service.`,
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectFile, "file", "f", "", "Path to the file to inspect")
	_ = inspectCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	return inspectPath(inspectFile, cmd.OutOrStdout())
}

func inspectPath(path string, out io.Writer) error {
	selected, err := files.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	info, err := files.Inspect(selected)
	if err != nil {
		return fmt.Errorf("failed to inspect file: %w", err)
	}

	observability.NewPrinter(out).PrintFileInfo(info)
	return nil
}
