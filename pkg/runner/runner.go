// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package runner runs the artifact registration step end to end: resolve
// inputs, build the payload, register once, report the outcome.
package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/cicd-ai-toolkit/artifact-registrar/pkg/actions"
	"github.com/cicd-ai-toolkit/artifact-registrar/pkg/config"
	"github.com/cicd-ai-toolkit/artifact-registrar/pkg/errors"
	"github.com/cicd-ai-toolkit/artifact-registrar/pkg/observability"
	"github.com/cicd-ai-toolkit/artifact-registrar/pkg/registration"
)

// Options configures a Runner.
type Options struct {
	// ConfigPath is an explicit config file; empty searches WorkDir.
	ConfigPath string
	// WorkDir is searched for the project config file.
	WorkDir string
	// Flags holds parsed CLI flags registered with config.BindFlags.
	Flags *pflag.FlagSet
	// Stdout receives workflow commands.
	Stdout io.Writer
	// Stderr receives log output.
	Stderr io.Writer
	// HTTPClient overrides the client used for the registration call.
	HTTPClient registration.Doer
}

// DefaultOptions returns the default runner options.
func DefaultOptions() *Options {
	return &Options{
		WorkDir: ".",
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// RunResult defines the output of a run.
type RunResult struct {
	// ExitCode is the process exit code.
	ExitCode int
	// Registration is set when the instance accepted the artifacts.
	Registration *registration.Result
	// Error is the failure reported to the runner, if any.
	Error error
	// Message is the user-facing failure message.
	Message string
	// Duration is the execution duration.
	Duration time.Duration
	// InvocationID correlates the log lines of this run.
	InvocationID string
}

// Runner executes one registration step.
type Runner struct {
	opts     *Options
	commands *actions.Commander
}

// New creates a new Runner instance with default options.
func New() *Runner {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a new Runner instance with the given options.
func NewWithOptions(opts *Options) *Runner {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Runner{
		opts:     opts,
		commands: actions.NewCommander(opts.Stdout),
	}
}

// Run performs the step. Failures are reported through the workflow
// command channel and reflected in RunResult; the returned RunResult is
// never nil.
func (r *Runner) Run(ctx context.Context) *RunResult {
	start := time.Now()
	result := &RunResult{InvocationID: uuid.NewString()}

	err := r.run(ctx, result)
	if err != nil {
		result.Error = err
		result.Message = registration.UserMessage(err)
		r.commands.SetFailed(result.Message)
	}

	result.ExitCode = r.commands.ExitCode()
	result.Duration = time.Since(start)
	return result
}

func (r *Runner) run(ctx context.Context, result *RunResult) error {
	loader := config.NewLoader().WithProjectRoot(r.opts.WorkDir).WithConfigFile(r.opts.ConfigPath)
	if r.opts.Flags != nil {
		loader = loader.WithFlags(r.opts.Flags)
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	// Mask before anything can echo a secret.
	for _, secret := range cfg.Credentials.Secrets() {
		r.commands.AddMask(secret)
	}

	if err := config.NewValidator().Validate(cfg); err != nil {
		return err
	}

	log := observability.NewLoggerTo(r.opts.Stderr, cfg.Global.LogLevel).
		With(observability.String("invocation", result.InvocationID))

	artifacts, err := registration.ParseArtifacts(cfg.Artifacts)
	if err != nil {
		return err
	}
	execCtx, err := registration.ParseExecutionContext(cfg.Context)
	if err != nil {
		return err
	}

	instanceURL := registration.NormalizeInstanceURL(cfg.InstanceURL)
	req := registration.BuildRequest(execCtx, artifacts, cfg.JobName)

	payload, err := json.Marshal(req)
	if err != nil {
		return errors.ParseError("Exception setting the payload to register artifact", err)
	}
	log.Info("payload to register artifact", observability.String("payload", string(payload)))

	creds := registration.Credentials{
		Token:    cfg.Credentials.Token,
		ToolID:   cfg.ToolID,
		Username: cfg.Credentials.Username,
		Password: cfg.Credentials.Password,
	}
	if creds.Token != "" && (creds.Username != "" || creds.Password != "") {
		r.commands.Warning("Both a token and username/password were supplied; using the token")
	}

	opts := []registration.Option{
		registration.WithLogger(log),
		registration.WithTracer(r.commands),
		registration.WithTimeout(cfg.Global.Timeout),
	}
	if r.opts.HTTPClient != nil {
		opts = append(opts, registration.WithHTTPClient(r.opts.HTTPClient))
	}

	res, err := registration.NewDispatcher(opts...).Register(ctx, instanceURL, creds, req)
	if err != nil {
		log.Debug("registration failed", observability.Any("detail", observability.SafeJSON(err)))
		return err
	}

	result.Registration = res
	return nil
}
