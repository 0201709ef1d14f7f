package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jwebster45206/ramdeus-bot/pkg/chat"
)

const (
	DefaultAzureDeployment = "gpt-4.1"
	DefaultAzureAPIVersion = "2024-10-21"
	DefaultAzureMaxTokens  = 800
	DefaultAzureTemp       = 0.8
)

// AzureOpenAIService implements LLMService against an Azure OpenAI deployment.
type AzureOpenAIService struct {
	apiKey     string
	baseURL    string
	deployment string
	apiVersion string
	httpClient *http.Client
	logger     *slog.Logger
}

type azureChatRequest struct {
	Messages    []chat.ChatMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type azureChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int              `json:"index"`
		Message      chat.ChatMessage `json:"message"`
		FinishReason string           `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

var _ LLMService = (*AzureOpenAIService)(nil)

// NewAzureOpenAIService creates a client for https://<resource>.openai.azure.com.
func NewAzureOpenAIService(resource, apiKey, deployment, apiVersion string, logger *slog.Logger) *AzureOpenAIService {
	return NewAzureOpenAIServiceWithBaseURL(
		fmt.Sprintf("https://%s.openai.azure.com", resource),
		apiKey, deployment, apiVersion, logger)
}

// NewAzureOpenAIServiceWithBaseURL points the client at an arbitrary host.
func NewAzureOpenAIServiceWithBaseURL(baseURL, apiKey, deployment, apiVersion string, logger *slog.Logger) *AzureOpenAIService {
	if deployment == "" {
		deployment = DefaultAzureDeployment
	}
	if apiVersion == "" {
		apiVersion = DefaultAzureAPIVersion
	}
	return &AzureOpenAIService{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		deployment: deployment,
		apiVersion: apiVersion,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

func (a *AzureOpenAIService) endpoint() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		a.baseURL, url.PathEscape(a.deployment), url.QueryEscape(a.apiVersion))
}

func (a *AzureOpenAIService) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	temperature := DefaultAzureTemp
	reqBody, err := json.Marshal(azureChatRequest{
		Messages:    messages,
		MaxTokens:   DefaultAzureMaxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint(), bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("api-key", a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var azureResp azureChatResponse
	if err := json.Unmarshal(body, &azureResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if azureResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", azureResp.Error.Message)
	}
	if len(azureResp.Choices) == 0 {
		return nil, fmt.Errorf("API returned no choices")
	}

	a.logger.Debug("Azure OpenAI chat completed",
		"deployment", a.deployment,
		"duration", time.Since(start),
		"prompt_tokens", azureResp.Usage.PromptTokens,
		"completion_tokens", azureResp.Usage.CompletionTokens)

	content := strings.TrimSpace(azureResp.Choices[0].Message.Content)
	if content == "" {
		content = "(no response)"
	}
	return &chat.ChatResponse{
		Message: content,
		Model:   azureResp.Model,
	}, nil
}
