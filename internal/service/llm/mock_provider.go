package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MockProvider returns canned replies for development and tests.
type MockProvider struct {
	mu        sync.Mutex
	available bool
	replies   []string
	err       error
	calls     []Request
}

// NewMockProvider creates a new mock provider. With no replies queued it answers
// with a single thought filed in the first folder named in the prompt.
func NewMockProvider(replies ...string) *MockProvider {
	return &MockProvider{available: true, replies: replies}
}

// SetAvailable toggles availability.
func (m *MockProvider) SetAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = available
}

// SetError makes every subsequent call fail with err.
func (m *MockProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the requests received so far.
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// IsAvailable returns whether the mock provider is available
func (m *MockProvider) IsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

// Generate pops the next queued reply.
func (m *MockProvider) Generate(_ context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)

	if !m.available {
		return "", fmt.Errorf("mock provider is not available")
	}
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) > 0 {
		reply := m.replies[0]
		m.replies = m.replies[1:]
		return reply, nil
	}
	return m.defaultReply(req.Prompt())
}

func (m *MockProvider) defaultReply(prompt string) (string, error) {
	folder := "Unsorted"
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") {
			folder = strings.TrimPrefix(line, "- ")
			break
		}
	}
	reply := map[string]any{
		"transcription": "This is a mock transcription.",
		"thoughts": []map[string]string{
			{"text": "This is a mock transcription.", "label": "Mock Thought", "folder": folder},
		},
	}
	data, err := json.Marshal(reply)
	if err != nil {
		return "", err
	}
	return "```json\n" + string(data) + "\n```", nil
}
