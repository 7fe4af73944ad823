// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package registration

import (
	"encoding/base64"

	"github.com/cicd-ai-toolkit/artifact-registrar/pkg/errors"
)

const (
	// TokenScheme prefixes the Authorization header in token mode.
	TokenScheme = "sn_devops.DevOpsToken"

	// MsgMissingCredentials is reported when no credential is supplied.
	MsgMissingCredentials = "Either secret token or integration username, password is needed for integration user authentication"
	// MsgIncompleteBasicAuth is reported when only one of username/password is supplied.
	MsgIncompleteBasicAuth = "For Basic Auth, Username and Password is mandatory for integration user authentication"
)

// AuthMode is the authentication scheme used for the registration call.
type AuthMode int

const (
	// AuthToken authenticates with an integration token and tool id.
	AuthToken AuthMode = iota
	// AuthBasic authenticates with the integration user's credentials.
	AuthBasic
)

func (m AuthMode) String() string {
	switch m {
	case AuthToken:
		return "token"
	case AuthBasic:
		return "basic"
	default:
		return "unknown"
	}
}

// APIVersion returns the registration API version served for the mode.
func (m AuthMode) APIVersion() string {
	if m == AuthToken {
		return "v2"
	}
	return "v1"
}

// Credentials are the integration credentials of a run. ToolID is also
// part of the token header.
type Credentials struct {
	Token    string
	ToolID   string
	Username string
	Password string
}

// Mode selects the authentication mode. A token wins over a
// username/password pair.
func (c Credentials) Mode() (AuthMode, error) {
	switch {
	case c.Token == "" && c.Username == "" && c.Password == "":
		return 0, errors.ConfigError(MsgMissingCredentials, nil)
	case c.Token != "":
		return AuthToken, nil
	case c.Username != "" && c.Password != "":
		return AuthBasic, nil
	default:
		return 0, errors.ConfigError(MsgIncompleteBasicAuth, nil)
	}
}

// Authorization returns the Authorization header value for mode.
func (c Credentials) Authorization(mode AuthMode) string {
	if mode == AuthToken {
		return TokenScheme + " " + c.ToolID + ":" + c.Token
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.Username+":"+c.Password))
}
