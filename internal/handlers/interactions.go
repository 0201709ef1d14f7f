package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jwebster45206/ramdeus-bot/internal/discord"
	"github.com/jwebster45206/ramdeus-bot/internal/metrics"
	"github.com/jwebster45206/ramdeus-bot/pkg/battle"
	"github.com/jwebster45206/ramdeus-bot/pkg/narrator"
	"github.com/jwebster45206/ramdeus-bot/pkg/quotes"
	"github.com/jwebster45206/ramdeus-bot/pkg/textfilter"
)

const (
	maxInteractionBody = 1 << 20

	unknownUserMessage    = "🤔 I couldn't tell who is attacking. Please try again."
	adviceDisabledMessage = "🧘 Ram Deus is meditating in silence and cannot give advice right now."
)

type SignatureVerifier interface {
	Verify(signatureHex, timestamp string, body []byte) error
}

type Advisor interface {
	Answer(ctx context.Context, question string) string
}

type FollowupSender interface {
	SendFollowup(ctx context.Context, interactionToken, content string) error
}

type QuotePicker interface {
	Random() quotes.Quote
}

// InteractionsHandler answers Discord's interaction webhook.
type InteractionsHandler struct {
	verifier      SignatureVerifier
	battle        BattleService
	quotes        QuotePicker
	advisor       Advisor // nil disables /advice
	followups     FollowupSender
	adviceTimeout time.Duration
	metrics       *metrics.Metrics
	logger        *slog.Logger

	pending sync.WaitGroup
}

type InteractionsConfig struct {
	Verifier      SignatureVerifier
	Battle        BattleService
	Quotes        QuotePicker
	Advisor       Advisor
	Followups     FollowupSender
	AdviceTimeout time.Duration
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
}

func NewInteractionsHandler(cfg InteractionsConfig) *InteractionsHandler {
	timeout := cfg.AdviceTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &InteractionsHandler{
		verifier:      cfg.Verifier,
		battle:        cfg.Battle,
		quotes:        cfg.Quotes,
		advisor:       cfg.Advisor,
		followups:     cfg.Followups,
		adviceTimeout: timeout,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
	}
}

func (h *InteractionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxInteractionBody))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := h.verifier.Verify(r.Header.Get(discord.HeaderSignature), r.Header.Get(discord.HeaderTimestamp), body); err != nil {
		h.logger.Warn("Rejected interaction with bad signature", "remote_addr", r.RemoteAddr)
		writeError(w, h.logger, http.StatusUnauthorized, "Bad request signature")
		return
	}

	var in discord.Interaction
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	switch in.Type {
	case discord.InteractionTypePing:
		writeJSON(w, h.logger, http.StatusOK, discord.InteractionResponse{Type: discord.ResponseTypePong})
	case discord.InteractionTypeApplicationCommand:
		h.handleCommand(w, r, &in)
	default:
		h.logger.Warn("Unknown interaction type", "type", in.Type)
		writeError(w, h.logger, http.StatusBadRequest, "unknown interaction type")
	}
}

func (h *InteractionsHandler) handleCommand(w http.ResponseWriter, r *http.Request, in *discord.Interaction) {
	if in.Data == nil {
		writeError(w, h.logger, http.StatusBadRequest, "missing command data")
		return
	}

	log := h.logger.With("command", in.Data.Name, "interaction_id", in.ID)
	log.Debug("Handling command", "user_id", in.UserID(), "guild_id", in.GuildID)

	switch in.Data.Name {
	case discord.CommandQuote:
		writeJSON(w, h.logger, http.StatusOK, discord.MessageResponse(h.quotes.Random().String()))
	case discord.CommandAdvice:
		h.handleAdvice(w, in, log)
	case discord.CommandAttack:
		writeJSON(w, h.logger, http.StatusOK, discord.MessageResponse(h.attackReply(r.Context(), in.UserID(), log)))
	case discord.CommandBattle:
		writeJSON(w, h.logger, http.StatusOK, discord.MessageResponse(h.statusReply(r.Context(), log)))
	default:
		log.Warn("Unknown command")
		writeError(w, h.logger, http.StatusBadRequest, "unknown command")
	}
}

func (h *InteractionsHandler) attackReply(ctx context.Context, userID string, log *slog.Logger) string {
	res, err := h.battle.Attack(ctx, userID)
	recordAttack(h.metrics, res, err)
	switch {
	case errors.Is(err, battle.ErrInvalidInput):
		return unknownUserMessage
	case err != nil:
		log.Error("Attack failed", "error", err)
		return narrator.ApologyMessage()
	}
	return narrator.AttackMessage(res)
}

func (h *InteractionsHandler) statusReply(ctx context.Context, log *slog.Logger) string {
	status, err := h.battle.Status(ctx)
	if err != nil {
		if errors.Is(err, battle.ErrPersistence) {
			h.metrics.ObserveStoreError("status")
		}
		log.Error("Status failed", "error", err)
		return narrator.ApologyMessage()
	}
	h.metrics.ObserveHealth(status.Health)
	return narrator.StatusMessage(status)
}

// handleAdvice defers the reply and posts the model's answer as a follow-up.
func (h *InteractionsHandler) handleAdvice(w http.ResponseWriter, in *discord.Interaction, log *slog.Logger) {
	if h.advisor == nil || h.followups == nil {
		writeJSON(w, h.logger, http.StatusOK, discord.MessageResponse(adviceDisabledMessage))
		return
	}

	question, _ := in.StringOption(discord.OptionQuestion)
	token := in.Token

	writeJSON(w, h.logger, http.StatusOK, discord.InteractionResponse{
		Type: discord.ResponseTypeDeferredChannelMessageWithSource,
	})

	// The follow-up outlives the request.
	h.pending.Add(1)
	go func() {
		defer h.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), h.adviceTimeout)
		defer cancel()

		answer := textfilter.Truncate(h.advisor.Answer(ctx, question), textfilter.DiscordMessageLimit)
		if err := h.followups.SendFollowup(ctx, token, answer); err != nil {
			log.Error("Failed to send advice follow-up", "error", err)
			return
		}
		log.Debug("Sent advice follow-up", "length", len(answer))
	}()
}

// Wait blocks until in-flight follow-ups finish or ctx ends.
func (h *InteractionsHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
