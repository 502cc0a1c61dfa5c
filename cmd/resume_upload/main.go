// Package main provides the resume_upload command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonathan/resume-upload/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "resume_upload",
	Short:         "Upload resumes to the resume parsing service",
	Long:          "resume_upload sends a PDF resume to the resume parsing service and shows the parsed name, contact details, skills and extracted text.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	addConfigFlags(rootCmd)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// addConfigFlags registers the flags every command shares.
func addConfigFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to JSON config file")
	flags.String("base-url", "", "Parsing service base URL (default http://localhost:5000)")
	flags.String("flow", "", "Expected response shape: rich or minimal (default rich)")
	flags.Int("timeout", 0, "Upload timeout in seconds (default 60)")
	flags.BoolP("verbose", "v", false, "Print detailed debug information")
}

// resolveConfig layers flags over environment over config file over defaults.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	var fileCfg config.Config
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		fileCfg = *loaded
	}

	envCfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	merged := envCfg.MergeWithDefaults(fileCfg)
	merged = merged.MergeWithDefaults(config.Defaults())

	if flags.Changed("base-url") {
		merged.BaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("flow") {
		merged.Flow, _ = flags.GetString("flow")
	}
	if flags.Changed("timeout") {
		merged.TimeoutSeconds, _ = flags.GetInt("timeout")
	}
	if v, _ := flags.GetBool("verbose"); v {
		merged.Verbose = true
	}

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}
