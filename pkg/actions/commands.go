// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package actions emits GitHub Actions workflow commands.
package actions

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Commander writes workflow commands and records whether the step failed.
type Commander struct {
	mu     sync.Mutex
	out    io.Writer
	failed bool
	reason string
}

// NewCommander creates a Commander writing to w.
func NewCommander(w io.Writer) *Commander {
	if w == nil {
		w = os.Stdout
	}
	return &Commander{out: w}
}

// Debug writes a ::debug:: line. The runner only shows these when step
// debugging is enabled.
func (c *Commander) Debug(msg string) {
	c.issue("debug", msg)
}

// Warning writes a ::warning:: line.
func (c *Commander) Warning(msg string) {
	c.issue("warning", msg)
}

// AddMask registers value as a secret so the runner redacts it from logs.
func (c *Commander) AddMask(value string) {
	if value == "" {
		return
	}
	c.issue("add-mask", value)
}

// SetFailed writes an ::error:: line and marks the step as failed. Only the
// first reason is kept.
func (c *Commander) SetFailed(msg string) {
	c.issue("error", msg)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.failed {
		c.failed = true
		c.reason = msg
	}
}

// Failed reports whether SetFailed was called.
func (c *Commander) Failed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed
}

// Reason returns the message passed to the first SetFailed call.
func (c *Commander) Reason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// ExitCode returns the process exit code for the step.
func (c *Commander) ExitCode() int {
	if c.Failed() {
		return 1
	}
	return 0
}

func (c *Commander) issue(command, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "::%s::%s\n", command, escapeData(msg))
}

// escapeData applies the workflow command data escaping rules.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}
