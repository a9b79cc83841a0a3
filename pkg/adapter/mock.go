package adapter

import (
	"context"
)

// MockAdapter returns deterministic responses for local runs and tests.
type MockAdapter struct {
	name     string
	model    string
	response string
	err      error

	// Prompts records every prompt passed to Query.
	Prompts []string
}

// NewMockAdapter creates a mock adapter that always answers with response.
func NewMockAdapter(name, response string) *MockAdapter {
	if name == "" {
		name = "mock"
	}
	return &MockAdapter{name: name, model: "mock-1", response: response}
}

// NewFailingMockAdapter creates a mock adapter whose queries fail with err.
func NewFailingMockAdapter(name string, err error) *MockAdapter {
	a := NewMockAdapter(name, "")
	a.err = err
	return a
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return a.name
}

// Model returns the mock model name.
func (a *MockAdapter) Model() string {
	return a.model
}

// Calls reports how many times Query ran.
func (a *MockAdapter) Calls() int {
	return len(a.Prompts)
}

// Query records the prompt and returns the canned response or error.
func (a *MockAdapter) Query(_ context.Context, prompt string) (string, error) {
	a.Prompts = append(a.Prompts, prompt)
	if a.err != nil {
		return "", a.err
	}
	return a.response, nil
}
