package main

import (
	"fmt"

	"github.com/jonathan/resume-upload/internal/server"
	"github.com/jonathan/resume-upload/internal/upload"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload web page",
	Long:  `Start an HTTP server with a resume upload form that forwards files to the parsing service and renders the parsed result.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	flow, err := upload.ParseFlow(cfg.Flow)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:    cfg.Port,
		BaseURL: cfg.BaseURL,
		Flow:    flow,
		Timeout: cfg.Timeout(),
		Accept:  cfg.Accept,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
