package handlers

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/guildgate/internal/discord"
	"github.com/khanghh/guildgate/internal/member"
	"github.com/stretchr/testify/require"
)

type fakeOperator struct {
	report  member.Report
	err     error
	guildID string
}

func (f *fakeOperator) JoinAll(ctx context.Context, guildID string) (member.Report, error) {
	f.guildID = guildID
	return f.report, f.err
}

type fakeFollowup struct {
	messages chan string
}

func (f *fakeFollowup) FollowupMessage(ctx context.Context, applicationID string, interactionToken string, content string, ephemeral bool) error {
	f.messages <- content
	return nil
}

type interactionTestEnv struct {
	app        *fiber.App
	privateKey ed25519.PrivateKey
	followup   *fakeFollowup
}

func newInteractionTestEnv(t *testing.T, operator *fakeOperator) *interactionTestEnv {
	t.Helper()
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	followup := &fakeFollowup{messages: make(chan string, 1)}
	handler := NewInteractionHandler(context.Background(), publicKey, operator, followup)

	app := fiber.New()
	app.Post("/interactions", handler.PostInteraction)
	return &interactionTestEnv{app: app, privateKey: privateKey, followup: followup}
}

func (env *interactionTestEnv) signedRequest(payload []byte) *http.Request {
	timestamp := "1700000000"
	msg := append([]byte(timestamp), payload...)
	signature := ed25519.Sign(env.privateKey, msg)

	req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerSignature, hex.EncodeToString(signature))
	req.Header.Set(headerSignTimestamp, timestamp)
	return req
}

func joinPayload(serverID string) []byte {
	blob, _ := json.Marshal(discord.Interaction{
		ID:            "1",
		ApplicationID: "app123",
		Type:          discord.InteractionTypeCommand,
		Token:         "tok456",
		Data: discord.InteractionData{
			Name:    "join",
			Options: []discord.InteractionOption{{Name: "server_id", Value: serverID}},
		},
	})
	return blob
}

func TestPostInteraction_Ping(t *testing.T) {
	env := newInteractionTestEnv(t, &fakeOperator{})

	payload := []byte(`{"id":"1","type":1,"token":"tok"}`)
	resp, err := env.app.Test(env.signedRequest(payload))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var response discord.InteractionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	require.Equal(t, discord.ResponseTypePong, response.Type)
}

func TestPostInteraction_BadSignature(t *testing.T) {
	env := newInteractionTestEnv(t, &fakeOperator{})

	payload := []byte(`{"id":"1","type":1,"token":"tok"}`)
	req := env.signedRequest(payload)
	req.Header.Set(headerSignature, hex.EncodeToString(make([]byte, ed25519.SignatureSize)))

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPostInteraction_JoinCommand(t *testing.T) {
	operator := &fakeOperator{report: member.Report{Added: 2, Failed: 1}}
	env := newInteractionTestEnv(t, operator)

	resp, err := env.app.Test(env.signedRequest(joinPayload("123456789")))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var response discord.InteractionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	require.Equal(t, discord.ResponseTypeDeferredMessage, response.Type)
	require.NotNil(t, response.Data)
	require.Equal(t, discord.MessageFlagEphemeral, response.Data.Flags)

	select {
	case content := <-env.followup.messages:
		require.Equal(t, "Added: 2 | Failed: 1", content)
	case <-time.After(time.Second):
		t.Fatal("no followup message received")
	}
	require.Equal(t, "123456789", operator.guildID)
}

func TestPostInteraction_UnknownCommand(t *testing.T) {
	env := newInteractionTestEnv(t, &fakeOperator{})

	payload := []byte(`{"id":"1","type":2,"token":"tok","data":{"name":"frobnicate"}}`)
	resp, err := env.app.Test(env.signedRequest(payload))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestJoinResultMessage(t *testing.T) {
	tests := []struct {
		name   string
		report member.Report
		err    error
		want   string
	}{
		{"success", member.Report{Added: 3, Failed: 0}, nil, "Added: 3 | Failed: 0"},
		{"invalid id", member.Report{}, member.ErrInvalidGuildID, "Invalid server ID."},
		{"not in guild", member.Report{}, discord.ErrGuildNotFound, "Bot not in server or missing perms."},
		{"missing perms", member.Report{}, discord.ErrMissingPermission, "Bot not in server or missing perms."},
		{"no users", member.Report{}, member.ErrNoAuthorizedUsers, "No authorized users."},
		{"other", member.Report{}, errors.New("boom"), "Something went wrong. Try again later."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, joinResultMessage(tt.report, tt.err))
		})
	}
}
