package discord

const (
	InteractionTypePing    = 1
	InteractionTypeCommand = 2

	ResponseTypePong            = 1
	ResponseTypeDeferredMessage = 5

	MessageFlagEphemeral = 1 << 6

	// PermissionCreateInstantInvite gates the guild member add endpoint.
	PermissionCreateInstantInvite = 1 << 0
)

// Guild is the bot's view of a guild as returned by the current-user guilds
// endpoint. Permissions is the bot's permission bitset, serialized as a
// decimal string.
type Guild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Permissions string `json:"permissions"`
}

// Interaction is the inbound payload posted to the interactions webhook.
type Interaction struct {
	ID            string          `json:"id"`
	ApplicationID string          `json:"application_id"`
	Type          int             `json:"type"`
	Token         string          `json:"token"`
	Data          InteractionData `json:"data"`
}

type InteractionData struct {
	Name    string              `json:"name"`
	Options []InteractionOption `json:"options"`
}

type InteractionOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// OptionValue returns the value of the named command option, or "".
func (d InteractionData) OptionValue(name string) string {
	for _, opt := range d.Options {
		if opt.Name == name {
			return opt.Value
		}
	}
	return ""
}

type InteractionResponse struct {
	Type int                      `json:"type"`
	Data *InteractionCallbackData `json:"data,omitempty"`
}

type InteractionCallbackData struct {
	Content string `json:"content,omitempty"`
	Flags   int    `json:"flags,omitempty"`
}
