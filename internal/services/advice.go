package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jwebster45206/ramdeus-bot/pkg/battle"
	"github.com/jwebster45206/ramdeus-bot/pkg/chat"
	"github.com/jwebster45206/ramdeus-bot/pkg/narrator"
	"github.com/jwebster45206/ramdeus-bot/pkg/textfilter"
)

// AdviceFailureMessage is posted when the model can't be reached.
const AdviceFailureMessage = "My meditation was interrupted and I lost my train of thought 😵‍💫 Please ask me again in a little while."

// BattleViewer supplies the fight's progress for the persona.
type BattleViewer interface {
	View(ctx context.Context) (battle.View, error)
}

// AdviceService answers /advice questions in Ram Deus's current voice.
type AdviceService struct {
	llm       LLMService
	battle    BattleViewer
	sanitizer *textfilter.Sanitizer
	logger    *slog.Logger
}

func NewAdviceService(llm LLMService, viewer BattleViewer, logger *slog.Logger) *AdviceService {
	return &AdviceService{
		llm:       llm,
		battle:    viewer,
		sanitizer: textfilter.NewSanitizer(),
		logger:    logger,
	}
}

// Messages builds the conversation sent to the model.
func (s *AdviceService) Messages(ctx context.Context, question string) []chat.ChatMessage {
	view, err := s.battle.View(ctx)
	if err != nil {
		// Advice still works when the fight can't be read; fall back to the opening persona.
		s.logger.Warn("Battle view unavailable for persona", "error", err)
		view = battle.View{Health: battle.MaxHealth}
	}
	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: narrator.Persona(view)},
		{Role: chat.ChatRoleUser, Content: strings.TrimSpace(question)},
	}
}

// Answer always returns text suitable for posting; model failures are logged
// and replaced with AdviceFailureMessage.
func (s *AdviceService) Answer(ctx context.Context, question string) string {
	req := chat.AdviceRequest{Question: question}
	if err := req.Validate(); err != nil {
		return "🤔 " + err.Error()
	}

	resp, err := s.llm.Chat(ctx, s.Messages(ctx, question))
	if err != nil {
		s.logger.Error("Error generating advice", "error", err)
		return AdviceFailureMessage
	}
	return s.sanitizer.Clean(resp.Message)
}
