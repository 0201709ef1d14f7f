package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwebster45206/ramdeus-bot/pkg/battle"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// apiClient talks to the operator routes of the bot's HTTP server.
type apiClient struct {
	client     *http.Client
	baseURL    string
	adminToken string
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/v1/battle")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func (a *apiClient) do(method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+a.adminToken)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("%s (status %d)", errorResp.Error, resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (a *apiClient) getStatus() (*battle.StatusSummary, error) {
	var status battle.StatusSummary
	if err := a.do(http.MethodGet, "/v1/battle", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (a *apiClient) getState() (*battle.BattleState, error) {
	var bs battle.BattleState
	if err := a.do(http.MethodGet, "/v1/battle/state", nil, &bs); err != nil {
		return nil, err
	}
	return &bs, nil
}

// AttackRequest matches the API request structure
type AttackRequest struct {
	AttackerID string `json:"attacker_id"`
}

func (a *apiClient) attack(attackerID string) (*battle.AttackResult, error) {
	var res battle.AttackResult
	if err := a.do(http.MethodPost, "/v1/battle/attack", AttackRequest{AttackerID: attackerID}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *apiClient) reset() (*battle.BattleState, error) {
	var bs battle.BattleState
	if err := a.do(http.MethodPost, "/v1/battle/reset", nil, &bs); err != nil {
		return nil, err
	}
	return &bs, nil
}
