package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/ramdeus-bot/pkg/chat"
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	ChatFunc func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)

	// Track calls for testing
	ChatCalls [][]chat.ChatMessage

	mu sync.Mutex // protects all fields above
}

var _ LLMService = (*MockLLMAPI)(nil)

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		ChatCalls: make([][]chat.ChatMessage, 0),
	}
}

// Chat records the call and delegates to ChatFunc when set
func (m *MockLLMAPI) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	m.mu.Lock()
	m.ChatCalls = append(m.ChatCalls, messages)
	fn := m.ChatFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages)
	}

	// Default behavior - a calm, generic answer
	return &chat.ChatResponse{Message: "Breathe. This too shall pass. 🙏"}, nil
}

// Calls returns a snapshot of the recorded conversations
func (m *MockLLMAPI) Calls() [][]chat.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]chat.ChatMessage, len(m.ChatCalls))
	copy(out, m.ChatCalls)
	return out
}
