package chat

import (
	"fmt"
	"strings"
)

const (
	ChatRoleUser   = "user"      // The Discord member asking
	ChatRoleAgent  = "assistant" // Ram Deus
	ChatRoleSystem = "system"    // Persona instructions
)

// MaxQuestionLength caps what a member may send to the model in one question.
const MaxQuestionLength = 1000

// ChatMessage is one entry in a chat-completions conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatResponse is the model's reply.
type ChatResponse struct {
	Message string `json:"message,omitempty"`
	Model   string `json:"model,omitempty"`
}

// AdviceRequest is an /advice question.
type AdviceRequest struct {
	Question string `json:"question"`
}

func (r *AdviceRequest) Validate() error {
	q := strings.TrimSpace(r.Question)
	if q == "" {
		return fmt.Errorf("question cannot be empty")
	}
	if len(q) > MaxQuestionLength {
		return fmt.Errorf("question is too long (max %d characters)", MaxQuestionLength)
	}
	return nil
}
