// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package registration

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cicd-ai-toolkit/artifact-registrar/pkg/errors"
	"github.com/cicd-ai-toolkit/artifact-registrar/pkg/observability"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 10 << 20

// Doer performs an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Tracer receives verbose diagnostic lines, such as raw bodies, that
// should only be shown when step debugging is on.
type Tracer interface {
	Debug(msg string)
}

// Result is a successful registration.
type Result struct {
	StatusCode int
	Body       []byte
	Mode       AuthMode
	Endpoint   string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient sets the client used for the registration call.
func WithHTTPClient(c Doer) Option {
	return func(d *Dispatcher) {
		if c != nil {
			d.client = c
		}
	}
}

// WithTimeout sets a timeout on the default client. Zero keeps the
// transport defaults.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if hc, ok := d.client.(*http.Client); ok {
			hc.Timeout = timeout
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l observability.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithTracer sets the sink for verbose diagnostics.
func WithTracer(t Tracer) Option {
	return func(d *Dispatcher) {
		d.tracer = t
	}
}

// Dispatcher sends one registration request per call to Register.
type Dispatcher struct {
	client Doer
	logger observability.Logger
	tracer Tracer
}

// NewDispatcher creates a Dispatcher. Without options it uses a plain
// http.Client and discards logs.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client: &http.Client{},
		logger: observability.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register selects the authentication mode from creds and posts req to the
// instance exactly once. A non-nil error is either a ConfigError (bad
// credentials, nothing sent) or a *Failure.
func (d *Dispatcher) Register(ctx context.Context, instanceURL string, creds Credentials, req RegistrationRequest) (*Result, error) {
	mode, err := creds.Mode()
	if err != nil {
		return nil, err
	}

	if err := ValidateInstanceURL(instanceURL); err != nil {
		return nil, &Failure{
			Category: CategoryInstanceURL,
			Message:  MsgInstanceURLInvalid,
			Err:      errors.ValidationError("invalid instance URL", err).WithContext("instance_url", instanceURL),
		}
	}

	endpoint := Endpoint(instanceURL, mode.APIVersion(), creds.ToolID)
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.ParseError("failed to encode registration payload", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &Failure{
			Category: CategoryInstanceURL,
			Message:  MsgInstanceURLInvalid,
			Err:      errors.ValidationError("failed to create request", err),
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", creds.Authorization(mode))

	log := d.logger.With(observability.String("mode", mode.String()), observability.String("endpoint", endpoint))
	d.trace(fmt.Sprintf("[ServiceNow DevOps], Sending Request for Artifact Registration, Request options :%s, Payload :%s",
		observability.SafeJSON(map[string]any{"headers": observability.RedactHeaders(httpReq.Header)}), payload))
	log.Debug("sending artifact registration")

	resp, err := d.client.Do(httpReq)
	if err != nil {
		f := classifyTransport(err)
		d.trace("[ServiceNow DevOps] Artifact Registration, Error: " + observability.SafeJSON(map[string]any{"message": err.Error()}))
		log.Error("artifact registration failed", observability.String("category", string(f.Category)), observability.Err(err))
		return nil, f
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if readErr != nil {
		log.Warn("failed to read registration response", observability.Err(readErr))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f := classifyStatus(resp.StatusCode, body)
		d.trace(fmt.Sprintf("[ServiceNow DevOps] Artifact Registration, Status code :%d, Response data :%s",
			resp.StatusCode, renderBody(body)))
		log.Error("artifact registration rejected",
			observability.Int("status", resp.StatusCode),
			observability.String("category", string(f.Category)))
		return nil, f
	}

	if readErr != nil {
		return nil, &Failure{
			Category:   CategoryNotCreated,
			Message:    MsgNotCreated,
			StatusCode: resp.StatusCode,
			Err:        errors.TransportError("failed to read registration response", readErr),
		}
	}

	if len(body) > 0 {
		d.trace("[ServiceNow DevOps], Receiving response for Artifact Registration, Response :" + renderBody(body))
	}
	log.Info("artifact registration succeeded", observability.Int("status", resp.StatusCode))

	return &Result{
		StatusCode: resp.StatusCode,
		Body:       body,
		Mode:       mode,
		Endpoint:   endpoint,
	}, nil
}

func (d *Dispatcher) trace(msg string) {
	if d.tracer != nil {
		d.tracer.Debug(msg)
	}
	d.logger.Debug(msg)
}

// renderBody formats a response body for diagnostics.
func renderBody(body []byte) string {
	if json.Valid(body) {
		return observability.SafeJSON(json.RawMessage(body))
	}
	return observability.SafeJSON(string(body))
}

// UserMessage returns the message a failed run should report.
func UserMessage(err error) string {
	var f *Failure
	if stderrors.As(err, &f) {
		return f.Message
	}
	return errors.Message(err)
}
