// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cicd-ai-toolkit/artifact-registrar/pkg/errors"
)

const (
	// EnvPrefix is the prefix the Actions runner puts on step inputs.
	EnvPrefix = "INPUT"
	// ProjectConfigFile is the project-level config file name.
	ProjectConfigFile = ".artifact-registrar.yaml"
	// FlagConfig names the flag that points at an explicit config file.
	FlagConfig = "config"
)

// inputs lists every input resolved from env and flags.
var inputs = []string{
	InputInstanceURL,
	InputToolID,
	InputJobName,
	InputArtifacts,
	InputContext,
	InputUsername,
	InputPassword,
	InputToken,
	InputLogLevel,
	InputTimeout,
}

// Loader loads configuration from files, environment and flags.
type Loader struct {
	projectRoot string
	configPath  string
	flags       *pflag.FlagSet
}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{}
}

// WithProjectRoot sets the directory searched for ProjectConfigFile.
func (l *Loader) WithProjectRoot(root string) *Loader {
	l.projectRoot = root
	return l
}

// WithConfigFile sets an explicit config file. Unlike the project file it
// must exist.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configPath = path
	return l
}

// WithFlags binds a flag set registered with BindFlags.
func (l *Loader) WithFlags(fs *pflag.FlagSet) *Loader {
	l.flags = fs
	return l
}

// BindFlags registers one string flag per step input on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.String(InputInstanceURL, "", "ServiceNow instance URL")
	fs.String(InputToolID, "", "Orchestration tool sys_id")
	fs.String(InputJobName, "", "Name of the job registering the artifacts")
	fs.String(InputArtifacts, "", "JSON-encoded list of artifacts")
	fs.String(InputContext, "", "JSON-encoded GitHub context")
	fs.String(InputUsername, "", "DevOps integration user name")
	fs.String(InputPassword, "", "DevOps integration user password")
	fs.String(InputToken, "", "DevOps integration token")
	fs.String(InputLogLevel, "", "Log level (debug, info, warn, error)")
	fs.String(InputTimeout, "", "HTTP timeout, e.g. 30s (default: none)")
	fs.String(FlagConfig, "", "Path to configuration file")
}

// Load loads configuration with full precedence order:
// 1. Defaults
// 2. Config file
// 3. Environment Variables (INPUT_*)
// 4. Flags
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.loadFile()
	if err != nil {
		return nil, err
	}

	if err := l.applyInputs(cfg); err != nil {
		return nil, err
	}

	resolveCredentialEnv(&cfg.Credentials)
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path on top of defaults.
func (l *Loader) LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ValidationError(fmt.Sprintf("failed to read config file: %s", path), err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.ValidationError(fmt.Sprintf("failed to parse config file: %s", path), err)
	}

	return cfg, nil
}

func (l *Loader) loadFile() (*Config, error) {
	path := l.configPath
	if path == "" && l.flags != nil {
		if v, err := l.flags.GetString(FlagConfig); err == nil {
			path = v
		}
	}
	if path != "" {
		return l.LoadFromPath(path)
	}

	root := l.projectRoot
	if root == "" {
		root = "."
	}
	projectPath := filepath.Join(root, ProjectConfigFile)
	if _, err := os.Stat(projectPath); err != nil {
		return DefaultConfig(), nil
	}
	return l.LoadFromPath(projectPath)
}

// applyInputs overlays INPUT_* variables and changed flags onto cfg.
func (l *Loader) applyInputs(cfg *Config) error {
	v := viper.New()
	for _, name := range inputs {
		if err := v.BindEnv(name, EnvName(name)); err != nil {
			return errors.ValidationError("failed to bind input "+name, err)
		}
	}
	if l.flags != nil {
		if err := v.BindPFlags(l.flags); err != nil {
			return errors.ValidationError("failed to bind flags", err)
		}
	}

	set := func(name string, dst *string) {
		if v.IsSet(name) {
			*dst = strings.TrimSpace(v.GetString(name))
		}
	}

	set(InputInstanceURL, &cfg.InstanceURL)
	set(InputToolID, &cfg.ToolID)
	set(InputJobName, &cfg.JobName)
	set(InputArtifacts, &cfg.Artifacts)
	set(InputContext, &cfg.Context)
	set(InputUsername, &cfg.Credentials.Username)
	set(InputPassword, &cfg.Credentials.Password)
	set(InputToken, &cfg.Credentials.Token)
	set(InputLogLevel, &cfg.Global.LogLevel)

	if v.IsSet(InputTimeout) {
		raw := strings.TrimSpace(v.GetString(InputTimeout))
		if raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return errors.ValidationError("invalid timeout: "+raw, err).WithContext("field", InputTimeout)
			}
			cfg.Global.Timeout = d
		}
	}

	return nil
}

// resolveCredentialEnv fills credentials that were only named by the
// config file's *_env fields.
func resolveCredentialEnv(c *CredentialsConfig) {
	if c.Token == "" && c.TokenEnv != "" {
		c.Token = os.Getenv(c.TokenEnv)
	}
	if c.Username == "" && c.UsernameEnv != "" {
		c.Username = os.Getenv(c.UsernameEnv)
	}
	if c.Password == "" && c.PasswordEnv != "" {
		c.Password = os.Getenv(c.PasswordEnv)
	}
}

// EnvName returns the environment variable the runner uses for an input:
// INPUT_ followed by the upper-cased name with spaces replaced.
func EnvName(input string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(input, " ", "_"))
}
