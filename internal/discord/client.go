package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultAPIBaseURL = "https://discord.com/api/v10"

	guildsPageLimit = 200
)

// Client is a minimal Discord REST client authenticated with the bot token.
// Every request carries the client's bounded timeout.
type Client struct {
	httpClient *http.Client
	baseURL    string
	botToken   string
}

func (c *Client) do(ctx context.Context, method string, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		blob, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(blob)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpClient.Do(req)
}

func readErrorBody(resp *http.Response) string {
	blob, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return string(blob)
}

// BotGuilds lists the guilds the bot account is a member of.
func (c *Client) BotGuilds(ctx context.Context) ([]Guild, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/@me/guilds?limit=%d", guildsPageLimit), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list guilds failed with status %d: %s", resp.StatusCode, readErrorBody(resp))
	}
	var guilds []Guild
	if err := json.NewDecoder(resp.Body).Decode(&guilds); err != nil {
		return nil, err
	}
	return guilds, nil
}

// CheckGuildAccess verifies that the bot is a member of the guild and holds
// the permission required to add members.
func (c *Client) CheckGuildAccess(ctx context.Context, guildID string) error {
	guilds, err := c.BotGuilds(ctx)
	if err != nil {
		return err
	}
	for _, guild := range guilds {
		if guild.ID != guildID {
			continue
		}
		permissions, err := strconv.ParseUint(guild.Permissions, 10, 64)
		if err != nil {
			return fmt.Errorf("malformed guild permissions %q: %w", guild.Permissions, err)
		}
		if permissions&PermissionCreateInstantInvite == 0 {
			return ErrMissingPermission
		}
		return nil
	}
	return ErrGuildNotFound
}

// AddGuildMember adds the user to the guild using their OAuth access token.
// 201 means newly added, 204 means already a member; both are success.
func (c *Client) AddGuildMember(ctx context.Context, guildID string, userID string, accessToken string) error {
	payload := map[string]string{"access_token": accessToken}
	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/guilds/%s/members/%s", guildID, userID), payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		return fmt.Errorf("add guild member failed with status %d: %s", resp.StatusCode, readErrorBody(resp))
	}
}

// FollowupMessage posts the followup message of a deferred interaction.
func (c *Client) FollowupMessage(ctx context.Context, applicationID string, interactionToken string, content string, ephemeral bool) error {
	payload := InteractionCallbackData{Content: content}
	if ephemeral {
		payload.Flags = MessageFlagEphemeral
	}
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/webhooks/%s/%s", applicationID, interactionToken), payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("interaction followup failed with status %d: %s", resp.StatusCode, readErrorBody(resp))
	}
	return nil
}

func NewClient(botToken string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultAPIBaseURL,
		botToken:   botToken,
	}
}
