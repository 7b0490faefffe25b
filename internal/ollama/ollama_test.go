// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// CLIENT CONSTRUCTION TESTS
// =============================================================================

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient()

	if client.BaseURL() != "http://127.0.0.1:11434" {
		t.Errorf("BaseURL() = %q, want default", client.BaseURL())
	}

	if client.Model() != "deepseek-r1:8b" {
		t.Errorf("Model() = %q, want default", client.Model())
	}
}

func TestNewClientWithConfig_FillsZeroValues(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://example.test:1234"})

	if client.BaseURL() != "http://example.test:1234" {
		t.Errorf("BaseURL() = %q", client.BaseURL())
	}

	if client.Model() != "deepseek-r1:8b" {
		t.Errorf("Model() = %q, want default fill", client.Model())
	}

	if client.config.ProbeTimeout != 5*time.Second {
		t.Errorf("ProbeTimeout = %v, want default fill", client.config.ProbeTimeout)
	}
}

func TestNewClientWithConfig_NilConfig(t *testing.T) {
	client := NewClientWithConfig(nil)

	if client.BaseURL() != "http://127.0.0.1:11434" {
		t.Errorf("BaseURL() = %q, want default", client.BaseURL())
	}
}

// =============================================================================
// GENERATE TESTS
// =============================================================================

func TestGenerate_RequestShape(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"response":"hi","done":true}`))
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL, Model: "llama3:8b"})

	raw, err := client.Generate(context.Background(), "why is the sky blue?", true)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotPath != "/api/generate" {
		t.Errorf("path = %q, want /api/generate", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}

	var req map[string]any
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if req["model"] != "llama3:8b" {
		t.Errorf("model = %v, want llama3:8b", req["model"])
	}
	if req["prompt"] != "why is the sky blue?" {
		t.Errorf("prompt = %v", req["prompt"])
	}
	if _, present := req["stream"]; present {
		t.Error("stream field present on streaming request, want omitted")
	}

	if string(raw) != `{"response":"hi","done":true}` {
		t.Errorf("Generate() = %q, want raw body", raw)
	}
}

func TestGenerate_NonStreamingSetsStreamFalse(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"response":"ok"}`))
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})
	if _, err := client.Generate(context.Background(), "hello", false); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var req map[string]any
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	stream, present := req["stream"]
	if !present {
		t.Fatal("stream field missing on non-streaming request")
	}
	if stream != false {
		t.Errorf("stream = %v, want false", stream)
	}
}

func TestGenerate_EscapesPromptOnWire(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"response":"ok"}`))
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})
	prompt := "a\\b \"c\"\nd"
	if _, err := client.Generate(context.Background(), prompt, true); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// The wire bytes must carry JSON escapes, not raw control characters.
	want := `"prompt":"a\\b \"c\"\nd"`
	if !strings.Contains(string(gotBody), want) {
		t.Errorf("request body = %s, want it to contain %s", gotBody, want)
	}
	if strings.Contains(string(gotBody), "\nd") {
		t.Error("request body carries a raw newline inside the prompt value")
	}

	// And the server must be able to decode the original prompt back.
	var req map[string]any
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if req["prompt"] != prompt {
		t.Errorf("decoded prompt = %q, want %q", req["prompt"], prompt)
	}
}

func TestGenerate_ReturnsBodyOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"model 'missing:7b' not found"}`))
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})

	raw, err := client.Generate(context.Background(), "hello", false)
	if err != nil {
		t.Fatalf("Generate() error = %v, want body passthrough on HTTP %d", err, http.StatusInternalServerError)
	}

	got := NewParser(nil).Parse(raw, false)
	if got.OK {
		t.Fatalf("Parse() = ok %q, want server error surfaced", got.Text)
	}
	if got.Err != "model 'missing:7b' not found" {
		t.Errorf("Parse() error = %q", got.Err)
	}
}

func TestGenerate_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})

	_, err := client.Generate(context.Background(), "hello", true)
	if err == nil {
		t.Fatal("Generate() error = nil, want connection failure")
	}
	if !IsNotRunning(err) {
		t.Errorf("IsNotRunning(%v) = false, want true", err)
	}
	if !strings.Contains(err.Error(), server.URL) {
		t.Errorf("error = %q, want it to name the base URL", err)
	}
}

func TestGenerate_ContextCanceled(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body: the server only cancels r.Context() on client
		// disconnect once the request body has been consumed.
		_, _ = io.ReadAll(r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.Generate(ctx, "hello", true)
	if err == nil {
		t.Fatal("Generate() error = nil, want cancellation")
	}
	if !IsTimeout(err) {
		t.Errorf("IsTimeout(%v) = false, want true", err)
	}
}

// =============================================================================
// HEALTH CHECK TESTS
// =============================================================================

func TestCheckRunning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Ollama is running"))
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})
	if err := client.CheckRunning(context.Background()); err != nil {
		t.Errorf("CheckRunning() error = %v, want nil", err)
	}
}

func TestCheckRunning_NotRunning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})
	err := client.CheckRunning(context.Background())
	if !IsNotRunning(err) {
		t.Errorf("CheckRunning() error = %v, want not-running", err)
	}
}

func TestCheckRunning_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})
	err := client.CheckRunning(context.Background())
	if err == nil {
		t.Fatal("CheckRunning() error = nil, want status error")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error = %q, want it to carry the status", err)
	}
}

// =============================================================================
// MODEL OPERATION TESTS
// =============================================================================

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %q, want /api/tags", r.URL.Path)
		}
		fmt.Fprint(w, `{"models":[
			{"name":"deepseek-r1:8b","size":5200000000},
			{"name":"llama3:8b","size":4700000000}
		]}`)
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}

	if len(models) != 2 {
		t.Fatalf("ListModels() returned %d models, want 2", len(models))
	}
	if models[0].Name != "deepseek-r1:8b" {
		t.Errorf("models[0].Name = %q", models[0].Name)
	}
	if models[1].Size != 4700000000 {
		t.Errorf("models[1].Size = %d", models[1].Size)
	}
}

func TestGetModel_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})
	_, err := client.GetModel(context.Background(), "missing:7b")
	if !IsModelNotFound(err) {
		t.Errorf("GetModel() error = %v, want model-not-found", err)
	}
}

func TestModelExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ShowModelRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Name == "deepseek-r1:8b" {
			fmt.Fprint(w, `{"details":{"family":"deepseek"}}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})

	if !client.ModelExists(context.Background(), "deepseek-r1:8b") {
		t.Error("ModelExists(deepseek-r1:8b) = false, want true")
	}
	if client.ModelExists(context.Background(), "missing:7b") {
		t.Error("ModelExists(missing:7b) = true, want false")
	}
}

// =============================================================================
// ERROR TYPE TESTS
// =============================================================================

func TestClientError_Error(t *testing.T) {
	plain := &ClientError{Type: ErrTypeUnknown, Message: "something broke"}
	if plain.Error() != "something broke" {
		t.Errorf("Error() = %q", plain.Error())
	}

	wrapped := &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: errors.New("boom")}
	if wrapped.Error() != "request failed: boom" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, wrapped.Cause) {
		t.Error("Unwrap() does not expose the cause")
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name string
		err  error
		fn   func(error) bool
		want bool
	}{
		{"not running sentinel", ErrNotRunning, IsNotRunning, true},
		{"timeout sentinel", ErrTimeout, IsTimeout, true},
		{"model not found sentinel", ErrModelNotFound, IsModelNotFound, true},
		{"typed not running", &ClientError{Type: ErrTypeNotRunning, Message: "x"}, IsNotRunning, true},
		{"wrapped not running", fmt.Errorf("send: %w", ErrNotRunning), IsNotRunning, true},
		{"plain error", errors.New("nope"), IsNotRunning, false},
		{"nil error", nil, IsTimeout, false},
		{"mismatched type", ErrTimeout, IsModelNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.err); got != tt.want {
				t.Errorf("helper(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// =============================================================================
// HELPER FUNCTION TESTS
// =============================================================================

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
		{5200000000, "4.8 GB"},
	}

	for _, tc := range tests {
		if got := FormatSize(tc.size); got != tc.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tc.size, got, tc.want)
		}
	}
}
