// Package ai provides a provider-agnostic gateway to the generation models,
// with task-based routing and extraction of JSON from their output.
package ai

import "context"

// TaskType defines the kind of generation task for routing purposes.
type TaskType int

const (
	TaskPlanGeneration TaskType = iota
	TaskExamGeneration
	TaskSuggestion
)

func (t TaskType) String() string {
	switch t {
	case TaskPlanGeneration:
		return "plan_generation"
	case TaskExamGeneration:
		return "exam_generation"
	case TaskSuggestion:
		return "suggestion"
	default:
		return "unknown"
	}
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the input to a completion.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	JSONMode    bool      `json:"json_mode,omitempty"` // ask the provider for a JSON document
	Task        TaskType  `json:"task,omitempty"`
}

// CompletionResponse is the output from a completion.
type CompletionResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// TotalTokens returns the sum of input and output tokens.
func (r CompletionResponse) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// ModelInfo describes an available model.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MaxTokens   int    `json:"max_tokens"`
	Description string `json:"description"`
}

// Completer is the minimal completion surface consumers depend on. Both a
// single Provider and the Router satisfy it.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// Provider is the interface all generation providers must implement.
type Provider interface {
	Completer
	Models() []ModelInfo
	HealthCheck(ctx context.Context) error
}
