// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package registration registers build artifacts with a ServiceNow DevOps
// instance: it builds the registration payload, sends it with the selected
// authentication mode and classifies the outcome.
package registration

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/cicd-ai-toolkit/artifact-registrar/pkg/errors"
)

// ExecutionContext identifies the pipeline run that produced the artifacts.
type ExecutionContext struct {
	Repository string
	Workflow   string
	RunID      string
	RunAttempt string
	RefName    string
}

// ArtifactSet is caller-supplied JSON describing the build outputs. It is
// forwarded as-is.
type ArtifactSet json.RawMessage

// MarshalJSON returns the artifacts unchanged.
func (a ArtifactSet) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return []byte("null"), nil
	}
	return a, nil
}

// RegistrationRequest is the body posted to the registration endpoint.
type RegistrationRequest struct {
	Artifacts           ArtifactSet `json:"artifacts"`
	PipelineName        string      `json:"pipelineName"`
	StageName           string      `json:"stageName"`
	TaskExecutionNumber string      `json:"taskExecutionNumber"`
	BranchName          string      `json:"branchName"`
}

// ParseArtifacts validates raw as JSON.
func ParseArtifacts(raw string) (ArtifactSet, error) {
	var probe any
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, errors.ParseError("Failed parsing artifacts", err).WithContext("input", "artifacts")
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		return nil, errors.ParseError("Failed parsing artifacts", err).WithContext("input", "artifacts")
	}
	return ArtifactSet(buf.Bytes()), nil
}

// scalar keeps the literal text of a JSON string or number.
type scalar string

func (s *scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, string(b) == "null":
		*s = ""
	case b[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = scalar(str)
	default:
		*s = scalar(b)
	}
	return nil
}

// ParseExecutionContext decodes the GitHub context JSON. Only the fields
// used by the payload are read; run_id and run_attempt may be strings or
// numbers.
func ParseExecutionContext(raw string) (ExecutionContext, error) {
	var doc struct {
		Repository scalar `json:"repository"`
		Workflow   scalar `json:"workflow"`
		RunID      scalar `json:"run_id"`
		RunAttempt scalar `json:"run_attempt"`
		RefName    scalar `json:"ref_name"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return ExecutionContext{}, errors.ParseError("Exception parsing github context", err).WithContext("input", "context-github")
	}

	return ExecutionContext{
		Repository: string(doc.Repository),
		Workflow:   string(doc.Workflow),
		RunID:      string(doc.RunID),
		RunAttempt: string(doc.RunAttempt),
		RefName:    string(doc.RefName),
	}, nil
}

// NormalizeInstanceURL trims whitespace and one trailing slash so the
// endpoint path can be appended without doubling the separator.
func NormalizeInstanceURL(raw string) string {
	u := strings.TrimSpace(raw)
	return strings.TrimSuffix(u, "/")
}

// BuildRequest assembles the registration body for a stage of a run.
func BuildRequest(ec ExecutionContext, artifacts ArtifactSet, stageName string) RegistrationRequest {
	return RegistrationRequest{
		Artifacts:           artifacts,
		PipelineName:        ec.Repository + "/" + ec.Workflow,
		StageName:           stageName,
		TaskExecutionNumber: ec.RunID + "/attempts/" + ec.RunAttempt,
		BranchName:          ec.RefName,
	}
}
