package discord

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestVerifier(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	v, err := NewVerifier(hex.EncodeToString(pub))
	require.NoError(t, err)

	body := []byte(`{"type":1}`)
	timestamp := "1700000000"
	sig := hex.EncodeToString(ed25519.Sign(priv, append([]byte(timestamp), body...)))

	assert.NoError(t, v.Verify(sig, timestamp, body))
	assert.ErrorIs(t, v.Verify(sig, "1700000001", body), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(sig, timestamp, []byte(`{"type":2}`)), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify("", timestamp, body), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify("zz", timestamp, body), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(sig, "", body), ErrInvalidSignature)
}

func TestNewVerifier_BadKey(t *testing.T) {
	_, err := NewVerifier("not-hex")
	assert.Error(t, err)

	_, err = NewVerifier("abcd")
	assert.Error(t, err)
}

func TestInteraction_UserID(t *testing.T) {
	tests := []struct {
		name string
		in   Interaction
		want string
	}{
		{"guild member", Interaction{Member: &Member{User: &User{ID: "111"}}}, "111"},
		{"direct message", Interaction{User: &User{ID: "222"}}, "222"},
		{"member preferred", Interaction{Member: &Member{User: &User{ID: "111"}}, User: &User{ID: "222"}}, "111"},
		{"nobody", Interaction{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.UserID())
		})
	}
}

func TestInteraction_StringOption(t *testing.T) {
	var in Interaction
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": 2,
		"token": "tok",
		"data": {"name": "advice", "options": [{"name": "question", "type": 3, "value": "why?"}]}
	}`), &in))

	q, ok := in.StringOption(OptionQuestion)
	assert.True(t, ok)
	assert.Equal(t, "why?", q)

	_, ok = in.StringOption("missing")
	assert.False(t, ok)

	_, ok = (&Interaction{}).StringOption(OptionQuestion)
	assert.False(t, ok)
}

func TestCommands(t *testing.T) {
	cmds := Commands()
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
		assert.NotEmpty(t, c.Description)
	}
	assert.Equal(t, []string{CommandQuote, CommandAdvice, CommandAttack, CommandBattle}, names)

	advice := cmds[1]
	require.Len(t, advice.Options, 1)
	assert.Equal(t, OptionQuestion, advice.Options[0].Name)
	assert.True(t, advice.Options[0].Required)
}

func TestClient_RegisterGlobalCommands(t *testing.T) {
	var gotPath, gotAuth, gotMethod string
	var got []ApplicationCommand
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotAuth, gotMethod = r.URL.Path, r.Header.Get("Authorization"), r.Method
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := NewClientWithBaseURL(server.URL, "app123", "secret", testLogger())
	require.NoError(t, c.RegisterGlobalCommands(context.Background(), Commands()))

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/applications/app123/commands", gotPath)
	assert.Equal(t, "Bot secret", gotAuth)
	assert.Len(t, got, 4)
}

func TestClient_RegisterGuildCommands(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClientWithBaseURL(server.URL, "app123", "secret", testLogger())
	require.NoError(t, c.RegisterGuildCommands(context.Background(), "guild9", Commands()))
	assert.Equal(t, "/applications/app123/guilds/guild9/commands", gotPath)

	assert.Error(t, c.RegisterGuildCommands(context.Background(), "", Commands()))
}

func TestClient_SendFollowup(t *testing.T) {
	var gotPath string
	var got ResponseData
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClientWithBaseURL(server.URL, "app123", "", testLogger())
	require.NoError(t, c.SendFollowup(context.Background(), "tok", "hello"))
	assert.Equal(t, "/webhooks/app123/tok", gotPath)
	assert.Equal(t, "hello", got.Content)
}

func TestClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"401: Unauthorized"}`))
	}))
	defer server.Close()

	c := NewClientWithBaseURL(server.URL, "app123", "bad", testLogger())
	err := c.RegisterGlobalCommands(context.Background(), Commands())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Unauthorized")
}
