// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package config resolves the step inputs for artifact-registrar.
//
// Resolution Order (later overrides earlier):
// 1. Defaults (hardcoded)
// 2. Config file: --config, or ./.artifact-registrar.yaml when present
// 3. Environment Variables: INPUT_<NAME> as set by the Actions runner
// 4. Command-line flags
package config

import (
	"time"
)

// Step input names, as declared in the action metadata.
const (
	InputInstanceURL = "instance-url"
	InputToolID      = "tool-id"
	InputJobName     = "job-name"
	InputArtifacts   = "artifacts"
	InputContext     = "context-github"
	InputUsername    = "devops-integration-user-name"
	InputPassword    = "devops-integration-user-password"
	InputToken       = "devops-integration-token"
	InputLogLevel    = "log-level"
	InputTimeout     = "timeout"
)

// Config represents the resolved inputs of one registration run.
type Config struct {
	InstanceURL string            `yaml:"instance_url"`
	ToolID      string            `yaml:"tool_id"`
	JobName     string            `yaml:"job_name"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Global      GlobalConfig      `yaml:"global"`

	// Artifacts and Context are raw JSON documents and only arrive as
	// inputs, never from the config file.
	Artifacts string `yaml:"-"`
	Context   string `yaml:"-"`
}

// CredentialsConfig holds the integration credentials.
// The file may only name environment variables; plaintext secrets come
// from inputs.
type CredentialsConfig struct {
	TokenEnv    string `yaml:"token_env"`
	UsernameEnv string `yaml:"username_env"`
	PasswordEnv string `yaml:"password_env"`

	Token    string `yaml:"-"`
	Username string `yaml:"-"`
	Password string `yaml:"-"`
}

// GlobalConfig contains process-wide settings.
type GlobalConfig struct {
	LogLevel string        `yaml:"log_level"` // debug, info, warn, error
	Timeout  time.Duration `yaml:"timeout"`   // 0 keeps the transport defaults
}

// Secrets returns the non-empty secret values that must be masked.
func (c *CredentialsConfig) Secrets() []string {
	var out []string
	for _, s := range []string{c.Token, c.Password} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
