package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/jwebster45206/ramdeus-bot/pkg/chat"
)

func TestMockLLMService(t *testing.T) {
	mockService := NewMockLLMAPI()

	messages := []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "Hello"},
	}

	response, err := mockService.Chat(context.Background(), messages)
	if err != nil {
		t.Errorf("Chat failed: %v", err)
	}

	if response.Message != "Breathe. This too shall pass. 🙏" {
		t.Errorf("Expected default reply, got '%s'", response.Message)
	}

	calls := mockService.Calls()
	if len(calls) != 1 {
		t.Fatalf("Expected 1 Chat call, got %d", len(calls))
	}
	if calls[0][0].Content != "Hello" {
		t.Errorf("Expected recorded message 'Hello', got '%s'", calls[0][0].Content)
	}
}

func TestMockLLMService_ErrorHandling(t *testing.T) {
	mockService := NewMockLLMAPI()

	expectedErr := fmt.Errorf("deployment not found")
	mockService.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		return nil, expectedErr
	}

	_, err := mockService.Chat(context.Background(), nil)
	if err == nil {
		t.Fatalf("Expected error, got nil")
	}

	if err.Error() != expectedErr.Error() {
		t.Errorf("Expected error '%s', got '%s'", expectedErr.Error(), err.Error())
	}

	if len(mockService.Calls()) != 1 {
		t.Errorf("Failed calls should still be recorded")
	}
}
