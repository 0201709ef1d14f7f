package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultAPIBaseURL = "https://discord.com/api/v10"
	userAgent         = "DiscordBot (https://github.com/jwebster45206/ramdeus-bot, 1.0.0)"
)

// APIError is a non-2xx answer from the Discord REST API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord API returned status %d: %s", e.StatusCode, e.Body)
}

// Client calls the Discord REST API with a bot token.
type Client struct {
	baseURL    string
	token      string
	appID      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(appID, token string, logger *slog.Logger) *Client {
	return NewClientWithBaseURL(DefaultAPIBaseURL, appID, token, logger)
}

// NewClientWithBaseURL points the client somewhere other than discord.com.
func NewClientWithBaseURL(baseURL, appID, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		appID:   appID,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// Request sends payload (if any) as JSON to endpoint, which is relative to the
// API root, and returns the response body.
func (c *Client) Request(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(endpoint, "/"), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bot "+c.token)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

// RegisterGlobalCommands bulk-overwrites the application's global commands.
func (c *Client) RegisterGlobalCommands(ctx context.Context, commands []ApplicationCommand) error {
	endpoint := fmt.Sprintf("applications/%s/commands", c.appID)
	if _, err := c.Request(ctx, http.MethodPut, endpoint, commands); err != nil {
		return fmt.Errorf("register global commands: %w", err)
	}
	c.logger.Info("Registered global commands", "count", len(commands))
	return nil
}

// RegisterGuildCommands bulk-overwrites the commands of one guild.
func (c *Client) RegisterGuildCommands(ctx context.Context, guildID string, commands []ApplicationCommand) error {
	if guildID == "" {
		return fmt.Errorf("guild id is required")
	}
	endpoint := fmt.Sprintf("applications/%s/guilds/%s/commands", c.appID, guildID)
	if _, err := c.Request(ctx, http.MethodPut, endpoint, commands); err != nil {
		return fmt.Errorf("register guild commands: %w", err)
	}
	c.logger.Info("Registered guild commands", "guild_id", guildID, "count", len(commands))
	return nil
}

// SendFollowup posts a message for a deferred interaction.
func (c *Client) SendFollowup(ctx context.Context, interactionToken, content string) error {
	endpoint := fmt.Sprintf("webhooks/%s/%s", c.appID, interactionToken)
	if _, err := c.Request(ctx, http.MethodPost, endpoint, ResponseData{Content: content}); err != nil {
		return fmt.Errorf("send followup: %w", err)
	}
	return nil
}
