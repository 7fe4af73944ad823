// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package registration

import (
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"

	"github.com/tidwall/gjson"

	"github.com/cicd-ai-toolkit/artifact-registrar/pkg/errors"
)

// Category is the user-facing class of a failed registration.
type Category string

const (
	CategoryInstanceURL   Category = "instance_url_invalid"
	CategoryCredentials   Category = "invalid_credentials"
	CategoryInvalidInputs Category = "invalid_inputs"
	CategoryNotCreated    Category = "not_created"
)

// User-facing failure messages.
const (
	MsgInstanceURLInvalid = "ServiceNow Instance URL is NOT valid. Please correct the URL and try again."
	MsgInvalidCredentials = "Invalid username and password or Invalid token and toolid. Please correct the input parameters and try again."
	MsgNotCreated         = "ServiceNow Artifact Versions are NOT created. Please check ServiceNow logs for more details."

	msgInvalidInputsPrefix = "[ServiceNow DevOps] Artifact Registration is not Successful."
	msgInvalidInputsSuffix = "Please provide valid inputs."
)

// Failure is a classified registration failure. Message is what the step
// reports; Err keeps the typed cause.
type Failure struct {
	Category   Category
	Message    string
	StatusCode int
	Body       []byte
	Err        error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// InvalidInputsMessage composes the 400/404 message around detail.
func InvalidInputsMessage(detail string) string {
	detail = strings.TrimSpace(detail)
	if detail == "" {
		return msgInvalidInputsPrefix + " " + msgInvalidInputsSuffix
	}
	return msgInvalidInputsPrefix + " " + detail + " " + msgInvalidInputsSuffix
}

// ExtractErrorDetail pulls the error text out of a ServiceNow error body.
// result.errorMessage wins; otherwise every result.details.errors[].message
// is joined.
func ExtractErrorDetail(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}

	if msg := gjson.GetBytes(body, "result.errorMessage"); msg.Exists() && msg.String() != "" {
		return msg.String()
	}

	var parts []string
	gjson.GetBytes(body, "result.details.errors.#.message").ForEach(func(_, v gjson.Result) bool {
		if s := strings.TrimSpace(v.String()); s != "" {
			parts = append(parts, s)
		}
		return true
	})
	return strings.Join(parts, " ")
}

// classifyStatus maps a non-2xx response to a Failure.
func classifyStatus(status int, body []byte) *Failure {
	cause := errors.ApplicationError(fmt.Sprintf("registration returned status %d", status), nil).
		WithContext("status", status)

	f := &Failure{StatusCode: status, Body: body, Err: cause}
	switch status {
	case http.StatusMethodNotAllowed:
		f.Category, f.Message = CategoryInstanceURL, MsgInstanceURLInvalid
	case http.StatusUnauthorized:
		f.Category, f.Message = CategoryCredentials, MsgInvalidCredentials
	case http.StatusBadRequest, http.StatusNotFound:
		f.Category, f.Message = CategoryInvalidInputs, InvalidInputsMessage(ExtractErrorDetail(body))
	default:
		f.Category, f.Message = CategoryNotCreated, MsgNotCreated
	}
	return f
}

// classifyTransport maps an error returned by the HTTP client to a Failure.
// Structured errors are inspected first; the message text is only matched
// when the client gives nothing structured to go on.
func classifyTransport(err error) *Failure {
	f := &Failure{Err: errors.TransportError("registration request failed", err)}

	var dnsErr *net.DNSError
	switch {
	case stderrors.Is(err, syscall.ECONNREFUSED), stderrors.As(err, &dnsErr):
		f.Category, f.Message = CategoryInstanceURL, MsgInstanceURLInvalid
		return f
	}

	// url.Error text carries the endpoint, whose port or tool id could
	// contain a status-like number.
	text := err.Error()
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) && urlErr.Err != nil {
		text = urlErr.Err.Error()
	}
	f.Category, f.Message = classifyMessage(text)
	return f
}

// classifyMessage is the text fallback for transports that only report a
// message, e.g. "Request failed with status code 401".
func classifyMessage(text string) (Category, string) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(text, "ECONNREFUSED"),
		strings.Contains(text, "ENOTFOUND"),
		strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "no such host"),
		strings.Contains(text, "405"):
		return CategoryInstanceURL, MsgInstanceURLInvalid
	case strings.Contains(text, "401"):
		return CategoryCredentials, MsgInvalidCredentials
	case strings.Contains(text, "400"), strings.Contains(text, "404"):
		return CategoryInvalidInputs, InvalidInputsMessage("")
	default:
		return CategoryNotCreated, MsgNotCreated
	}
}
