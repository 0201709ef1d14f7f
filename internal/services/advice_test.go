package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/ramdeus-bot/pkg/battle"
	"github.com/jwebster45206/ramdeus-bot/pkg/chat"
)

type stubViewer struct {
	view battle.View
	err  error
}

func (s stubViewer) View(ctx context.Context) (battle.View, error) {
	return s.view, s.err
}

func TestAdviceService_Answer(t *testing.T) {
	llm := NewMockLLMAPI()
	llm.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		return &chat.ChatResponse{Message: "Hey @everyone, what the hell, just breathe."}, nil
	}
	svc := NewAdviceService(llm, stubViewer{view: battle.View{Health: 25, AttackerCount: 5}}, discardLogger())

	answer := svc.Answer(context.Background(), "  How do I find peace?  ")
	assert.Equal(t, "Hey @\u200beveryone, what the heck, just breathe.", answer)

	calls := llm.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 2)
	assert.Equal(t, chat.ChatRoleSystem, calls[0][0].Role)
	assert.Contains(t, calls[0][0].Content, "almost free of the demon")
	assert.Equal(t, chat.ChatMessage{Role: chat.ChatRoleUser, Content: "How do I find peace?"}, calls[0][1])
}

func TestAdviceService_LLMFailure(t *testing.T) {
	llm := NewMockLLMAPI()
	llm.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		return nil, errors.New("azure is down")
	}
	svc := NewAdviceService(llm, stubViewer{view: battle.View{Health: 100}}, discardLogger())

	assert.Equal(t, AdviceFailureMessage, svc.Answer(context.Background(), "Why?"))
}

func TestAdviceService_BattleUnavailableFallsBack(t *testing.T) {
	llm := NewMockLLMAPI()
	svc := NewAdviceService(llm, stubViewer{err: battle.PersistenceError("load", errors.New("boom"))}, discardLogger())

	answer := svc.Answer(context.Background(), "Any advice?")
	assert.NotEmpty(t, answer)

	calls := llm.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0][0].Content, "possessed by a mischievous demon")
}

func TestAdviceService_InvalidQuestion(t *testing.T) {
	llm := NewMockLLMAPI()
	svc := NewAdviceService(llm, stubViewer{}, discardLogger())

	answer := svc.Answer(context.Background(), "   ")
	assert.True(t, strings.HasPrefix(answer, "🤔"))
	assert.Empty(t, llm.Calls(), "invalid questions never reach the model")
}
