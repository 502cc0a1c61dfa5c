package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jonathan/resume-upload/internal/config"
	"github.com/jonathan/resume-upload/internal/files"
	"github.com/jonathan/resume-upload/internal/observability"
	"github.com/jonathan/resume-upload/internal/types"
	"github.com/jonathan/resume-upload/internal/upload"
	"github.com/spf13/cobra"
)

// errUploadFailed is returned when the upload ran but produced the Error variant.
var errUploadFailed = errors.New("upload failed")

var (
	uploadFile      string
	uploadAccept    string
	uploadPreflight bool
	uploadJSON      bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a resume PDF to the parsing service",
	Long: `Upload a resume to <base-url>/upload as multipart form data and print the result.

In the rich flow the parsed name, email, phone, GitHub, LinkedIn and skills are
printed after the raw extracted text. In the minimal flow only the service's
acknowledgement is printed.`,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadFile, "file", "f", "", "Path to the resume file")
	uploadCmd.Flags().StringVar(&uploadAccept, "accept", "", "Accepted file types, like an input's accept attribute (default application/pdf)")
	uploadCmd.Flags().BoolVar(&uploadPreflight, "preflight", false, "Inspect the file locally before uploading")
	uploadCmd.Flags().BoolVar(&uploadJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("accept") {
		cfg.Accept = uploadAccept
	}

	opts := uploadOptions{
		Path:      uploadFile,
		Preflight: uploadPreflight,
		JSON:      uploadJSON,
		Logger:    log.New(os.Stderr, "", log.LstdFlags),
	}
	return uploadResume(cmd.Context(), cfg, opts, cmd.OutOrStdout())
}

type uploadOptions struct {
	Path      string
	Preflight bool
	JSON      bool
	Logger    *log.Logger
}

// uploadResume selects the file at opts.Path, submits it and prints the result.
// It returns an error when the file is rejected locally or the result is an Error.
func uploadResume(ctx context.Context, cfg *config.Config, opts uploadOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	flow, err := upload.ParseFlow(cfg.Flow)
	if err != nil {
		return err
	}

	client, err := upload.NewClient(&upload.ClientOptions{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout(),
	})
	if err != nil {
		return fmt.Errorf("failed to create upload client: %w", err)
	}

	printer := observability.NewPrinter(out)
	if cfg.Verbose && !opts.JSON {
		_, _ = fmt.Fprintf(out, "Endpoint: %s\nFlow: %s\nTimeout: %s\n", client.Endpoint(), flow, cfg.Timeout())
	}

	var selected *types.SelectedFile
	if opts.Path != "" {
		selected, err = files.Open(opts.Path)
		if err != nil {
			return fmt.Errorf("failed to select file: %w", err)
		}
		if !files.Accepts(selected, cfg.Accept) {
			return &upload.ValidationError{
				Field:   upload.FileField,
				Message: fmt.Sprintf("%s has type %s; accepted: %s", selected.Name, selected.MimeType, cfg.Accept),
			}
		}
		if opts.Preflight {
			info, err := files.Inspect(selected)
			if err != nil {
				return fmt.Errorf("preflight failed: %w", err)
			}
			if !opts.JSON {
				printer.PrintFileInfo(info)
			}
		}
	}

	ctrl := upload.NewController(client, upload.Options{Flow: flow, Logger: opts.Logger})
	ctrl.SelectFile(selected)
	if !opts.JSON {
		printer.PrintSelectedFile(selected)
	}

	result, submitErr := ctrl.Submit(ctx)
	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		printer.PrintResult(result)
	}

	if submitErr != nil {
		return submitErr
	}
	if result.IsError() {
		return errUploadFailed
	}
	return nil
}
