package services

import (
	"context"

	"github.com/jwebster45206/ramdeus-bot/pkg/chat"
)

// LLMService defines the interface for interacting with the hosted language model
type LLMService interface {
	// Chat sends a conversation and returns the model's reply
	Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
}
