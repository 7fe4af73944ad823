package registration

import (
	"encoding/json"
	"testing"

	"github.com/cicd-ai-toolkit/artifact-registrar/pkg/errors"
)

const sampleContext = `{
	"repository": "acme/shop",
	"workflow": "CI",
	"run_id": "6543210",
	"run_attempt": "2",
	"ref_name": "main",
	"event": {"ref": "refs/heads/main"}
}`

func TestParseExecutionContext(t *testing.T) {
	ec, err := ParseExecutionContext(sampleContext)
	if err != nil {
		t.Fatalf("ParseExecutionContext() error = %v", err)
	}

	want := ExecutionContext{
		Repository: "acme/shop",
		Workflow:   "CI",
		RunID:      "6543210",
		RunAttempt: "2",
		RefName:    "main",
	}
	if ec != want {
		t.Errorf("ParseExecutionContext() = %+v, want %+v", ec, want)
	}
}

func TestParseExecutionContext_NumericFields(t *testing.T) {
	ec, err := ParseExecutionContext(`{"run_id": 9007199254740993, "run_attempt": 1}`)
	if err != nil {
		t.Fatalf("ParseExecutionContext() error = %v", err)
	}
	if ec.RunID != "9007199254740993" {
		t.Errorf("RunID = %s, want literal number text", ec.RunID)
	}
	if ec.RunAttempt != "1" {
		t.Errorf("RunAttempt = %s, want 1", ec.RunAttempt)
	}
	if ec.Repository != "" {
		t.Errorf("Repository = %q, want empty for missing field", ec.Repository)
	}
}

func TestParseExecutionContext_Malformed(t *testing.T) {
	_, err := ParseExecutionContext(`{"repository": `)
	if err == nil {
		t.Fatal("ParseExecutionContext() error = nil")
	}
	if !errors.IsType(err, errors.ErrParse) {
		t.Errorf("error type = %v, want ErrParse", err)
	}
}

func TestParseArtifacts(t *testing.T) {
	set, err := ParseArtifacts(`[ {"name": "shop-api", "version": "1.4.2", "semanticVersion": "1.4.2"} ]`)
	if err != nil {
		t.Fatalf("ParseArtifacts() error = %v", err)
	}
	want := `[{"name":"shop-api","version":"1.4.2","semanticVersion":"1.4.2"}]`
	if string(set) != want {
		t.Errorf("ParseArtifacts() = %s, want %s", set, want)
	}
}

func TestParseArtifacts_Malformed(t *testing.T) {
	for _, raw := range []string{"", "[{", "not json", `{"a":1}}`} {
		_, err := ParseArtifacts(raw)
		if err == nil {
			t.Errorf("ParseArtifacts(%q) error = nil", raw)
			continue
		}
		if !errors.IsType(err, errors.ErrParse) {
			t.Errorf("ParseArtifacts(%q) error type = %v, want ErrParse", raw, err)
		}
	}
}

func TestNormalizeInstanceURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://x.com/", "https://x.com"},
		{"  https://x.com  ", "https://x.com"},
		{"https://x.com", "https://x.com"},
		{" https://x.com/ \n", "https://x.com"},
		{"https://x.com//", "https://x.com/"},
	}

	for _, tt := range tests {
		if got := NormalizeInstanceURL(tt.in); got != tt.want {
			t.Errorf("NormalizeInstanceURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildRequest(t *testing.T) {
	ec, err := ParseExecutionContext(sampleContext)
	if err != nil {
		t.Fatalf("ParseExecutionContext() error = %v", err)
	}
	artifacts, err := ParseArtifacts(`[{"name":"shop-api","version":"1.4.2"}]`)
	if err != nil {
		t.Fatalf("ParseArtifacts() error = %v", err)
	}

	req := BuildRequest(ec, artifacts, "build")

	if req.PipelineName != "acme/shop/CI" {
		t.Errorf("PipelineName = %s, want acme/shop/CI", req.PipelineName)
	}
	if req.StageName != "build" {
		t.Errorf("StageName = %s, want build", req.StageName)
	}
	if req.TaskExecutionNumber != "6543210/attempts/2" {
		t.Errorf("TaskExecutionNumber = %s, want 6543210/attempts/2", req.TaskExecutionNumber)
	}
	if req.BranchName != "main" {
		t.Errorf("BranchName = %s, want main", req.BranchName)
	}

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	want := `{"artifacts":[{"name":"shop-api","version":"1.4.2"}],"pipelineName":"acme/shop/CI","stageName":"build","taskExecutionNumber":"6543210/attempts/2","branchName":"main"}`
	if string(body) != want {
		t.Errorf("body = %s\nwant   %s", body, want)
	}
}

func TestBuildRequest_TaskExecutionNumber(t *testing.T) {
	cases := []struct{ runID, attempt string }{
		{"1", "1"},
		{"123456789012", "17"},
		{"", ""},
		{"abc", "x/y"},
	}
	for _, c := range cases {
		req := BuildRequest(ExecutionContext{RunID: c.runID, RunAttempt: c.attempt}, nil, "stage")
		want := c.runID + "/attempts/" + c.attempt
		if req.TaskExecutionNumber != want {
			t.Errorf("TaskExecutionNumber = %q, want %q", req.TaskExecutionNumber, want)
		}
	}
}
