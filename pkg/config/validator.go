// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"fmt"
	"strings"

	"github.com/cicd-ai-toolkit/artifact-registrar/pkg/errors"
)

// Validator validates configuration.
type Validator struct{}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks required inputs first, in declaration order, then the
// global settings. Credential combinations are checked by the dispatcher.
func (v *Validator) Validate(cfg *Config) error {
	if err := v.ValidateRequired(cfg); err != nil {
		return err
	}
	return v.ValidateGlobal(&cfg.Global)
}

// ValidateRequired reports the first required input that is empty.
func (v *Validator) ValidateRequired(cfg *Config) error {
	required := []struct {
		name  string
		value string
	}{
		{InputInstanceURL, cfg.InstanceURL},
		{InputToolID, cfg.ToolID},
		{InputJobName, cfg.JobName},
		{InputArtifacts, cfg.Artifacts},
		{InputContext, cfg.Context},
	}

	for _, in := range required {
		if strings.TrimSpace(in.value) == "" {
			return errors.ValidationError("Input required and not supplied: "+in.name, nil).
				WithContext("field", in.name)
		}
	}
	return nil
}

// ValidateGlobal validates global configuration.
func (v *Validator) ValidateGlobal(cfg *GlobalConfig) error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if cfg.LogLevel != "" {
		valid := false
		for _, level := range validLogLevels {
			if strings.EqualFold(cfg.LogLevel, level) {
				valid = true
				break
			}
		}
		if !valid {
			return errors.ValidationError(
				fmt.Sprintf("invalid %s %q: must be one of: %s", InputLogLevel, cfg.LogLevel, strings.Join(validLogLevels, ", ")),
				nil,
			).WithContext("field", InputLogLevel)
		}
	}

	if cfg.Timeout < 0 {
		return errors.ValidationError(fmt.Sprintf("invalid %s %s: must be non-negative", InputTimeout, cfg.Timeout), nil).
			WithContext("field", InputTimeout)
	}

	return nil
}
