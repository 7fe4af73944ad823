// Package main provides the artifact-registrar CLI application.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cicd-ai-toolkit/artifact-registrar/pkg/config"
	"github.com/cicd-ai-toolkit/artifact-registrar/pkg/runner"
	"github.com/cicd-ai-toolkit/artifact-registrar/pkg/version"
)

// exitCode carries the step outcome out of RunE; cobra only knows errors.
var exitCode int

// rootCmd registers the workflow's artifacts with ServiceNow DevOps.
var rootCmd = &cobra.Command{
	Use:   "artifact-registrar",
	Short: "Register build artifacts with ServiceNow DevOps",
	Long: `artifact-registrar - ServiceNow DevOps artifact registration step.

Reads step inputs from INPUT_* environment variables (as set by the
GitHub Actions runner), an optional .artifact-registrar.yaml and flags,
then registers the artifacts against the configured instance once.`,
	Version:       version.FullString(),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := runner.DefaultOptions()
		opts.Flags = cmd.Flags()
		opts.Stdout = cmd.OutOrStdout()
		opts.Stderr = cmd.ErrOrStderr()

		result := runner.NewWithOptions(opts).Run(ctx)
		exitCode = result.ExitCode
		return nil
	},
}

// Execute runs the root command and returns the step exit code.
func Execute() (int, error) {
	exitCode = 0
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		rootCmd.PrintErrln("Error:", err)
		return 1, err
	}
	return exitCode, nil
}

func init() {
	config.BindFlags(rootCmd.Flags())
}
