// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package registration

import (
	"fmt"
	"net/url"
	"regexp"
)

// Namespace is the scoped application serving the DevOps API.
const Namespace = "sn_devops"

// validURLPattern matches safe URL schemes (http/https only)
var validURLPattern = regexp.MustCompile(`(?i)^https?://`)

// metadataHosts are cloud metadata endpoints that are never a valid instance.
var metadataHosts = []*regexp.Regexp{
	regexp.MustCompile(`^169\.254\.169\.254$`), // AWS/GCP/Azure
	regexp.MustCompile(`(?i)^metadata\.google\.internal$`),
	regexp.MustCompile(`^fd00:ec2::254$`), // AWS IPv6
}

// Endpoint builds the registration URL for an API version.
func Endpoint(instanceURL, version, toolID string) string {
	return fmt.Sprintf("%s/api/%s/%s/devops/artifact/registration?orchestrationToolId=%s",
		NormalizeInstanceURL(instanceURL), Namespace, version, url.QueryEscape(toolID))
}

// ValidateInstanceURL checks that the instance URL is an http(s) URL with a
// host that is not a metadata endpoint.
func ValidateInstanceURL(instanceURL string) error {
	u := NormalizeInstanceURL(instanceURL)
	if !validURLPattern.MatchString(u) {
		return fmt.Errorf("invalid URL scheme: only http and https are allowed")
	}

	parsedURL, err := url.Parse(u)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	hostname := parsedURL.Hostname()
	if hostname == "" {
		return fmt.Errorf("URL has no hostname")
	}

	for _, pattern := range metadataHosts {
		if pattern.MatchString(hostname) {
			return fmt.Errorf("refusing to connect to metadata endpoint: %s", hostname)
		}
	}

	return nil
}
