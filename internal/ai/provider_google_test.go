package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func geminiTestHandler(t *testing.T, check func(geminiRequest)) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		json.NewDecoder(r.Body).Decode(&req)
		if check != nil {
			check(req)
		}

		var resp geminiResponse
		resp.Candidates = []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		}{{}}
		resp.Candidates[0].Content.Parts = []struct {
			Text string `json:"text"`
		}{{Text: "Gemini response"}}
		resp.UsageMetadata.PromptTokenCount = 8
		resp.UsageMetadata.CandidatesTokenCount = 12
		json.NewEncoder(w).Encode(resp)
	}
}

func TestGoogleProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing or wrong API key in query")
		}
		geminiTestHandler(t, func(req geminiRequest) {
			if len(req.Contents) == 0 {
				t.Error("no contents in request")
			}
		})(w, r)
	}))
	defer server.Close()

	provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "Gemini response" {
		t.Errorf("content = %q, want %q", resp.Content, "Gemini response")
	}
	if resp.InputTokens != 8 {
		t.Errorf("input_tokens = %d, want 8", resp.InputTokens)
	}
}

func TestGoogleProvider_Complete_SystemInstruction(t *testing.T) {
	server := httptest.NewServer(geminiTestHandler(t, func(req geminiRequest) {
		if req.SystemInstruction == nil {
			t.Fatal("system message not mapped to systemInstruction")
		}
		if req.SystemInstruction.Parts[0].Text != "tu es un expert" {
			t.Errorf("systemInstruction = %q", req.SystemInstruction.Parts[0].Text)
		}
		for _, c := range req.Contents {
			if c.Role == "system" {
				t.Error("system role leaked into contents")
			}
		}
	}))
	defer server.Close()

	provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))
	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{
			{Role: "system", Content: "tu es un expert"},
			{Role: "user", Content: "génère"},
		},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
}

func TestGoogleProvider_Complete_JSONMode(t *testing.T) {
	server := httptest.NewServer(geminiTestHandler(t, func(req geminiRequest) {
		if req.GenerationConfig == nil || req.GenerationConfig.ResponseMIMEType != "application/json" {
			t.Error("JSONMode did not set responseMimeType")
		}
	}))
	defer server.Close()

	provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))
	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "x"}},
		JSONMode: true,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
}

func TestGoogleProvider_Complete_AssistantRoleMapped(t *testing.T) {
	server := httptest.NewServer(geminiTestHandler(t, func(req geminiRequest) {
		if len(req.Contents) != 2 {
			t.Fatalf("contents = %d, want 2", len(req.Contents))
		}
		if req.Contents[1].Role != "model" {
			t.Errorf("assistant role mapped to %q, want model", req.Contents[1].Role)
		}
	}))
	defer server.Close()

	provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))
	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{
			{Role: "user", Content: "a"},
			{Role: "assistant", Content: "b"},
		},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
}
