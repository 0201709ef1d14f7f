// Package discord holds the small slice of the Discord interactions API the
// bot speaks: inbound interaction payloads, signature checks, command
// definitions and the REST calls for registration and follow-ups.
package discord

// InteractionType identifies what Discord is sending.
type InteractionType int

const (
	InteractionTypePing               InteractionType = 1
	InteractionTypeApplicationCommand InteractionType = 2
)

// ResponseType tells Discord how to handle our reply.
type ResponseType int

const (
	ResponseTypePong                             ResponseType = 1
	ResponseTypeChannelMessageWithSource         ResponseType = 4
	ResponseTypeDeferredChannelMessageWithSource ResponseType = 5
)

// OptionTypeString is the application command option type for text input.
const OptionTypeString = 3

type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

type Member struct {
	User *User `json:"user,omitempty"`
}

type CommandOption struct {
	Name  string `json:"name"`
	Type  int    `json:"type"`
	Value any    `json:"value,omitempty"`
}

type CommandData struct {
	ID      string          `json:"id,omitempty"`
	Name    string          `json:"name"`
	Options []CommandOption `json:"options,omitempty"`
}

// Interaction is an inbound webhook payload.
type Interaction struct {
	ID            string          `json:"id"`
	ApplicationID string          `json:"application_id"`
	Type          InteractionType `json:"type"`
	Data          *CommandData    `json:"data,omitempty"`
	GuildID       string          `json:"guild_id,omitempty"`
	ChannelID     string          `json:"channel_id,omitempty"`
	Member        *Member         `json:"member,omitempty"` // Set in guilds
	User          *User           `json:"user,omitempty"`   // Set in DMs
	Token         string          `json:"token"`
}

// UserID returns the invoking user's id whether the command came from a
// guild or a direct message.
func (i *Interaction) UserID() string {
	if i.Member != nil && i.Member.User != nil && i.Member.User.ID != "" {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// StringOption returns the named string option of the command, if present.
func (i *Interaction) StringOption(name string) (string, bool) {
	if i.Data == nil {
		return "", false
	}
	for _, opt := range i.Data.Options {
		if opt.Name != name {
			continue
		}
		s, ok := opt.Value.(string)
		return s, ok
	}
	return "", false
}

type ResponseData struct {
	Content string `json:"content,omitempty"`
	Flags   int    `json:"flags,omitempty"`
}

// InteractionResponse is the synchronous reply to an interaction.
type InteractionResponse struct {
	Type ResponseType  `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

// MessageResponse replies in the channel with content.
func MessageResponse(content string) InteractionResponse {
	return InteractionResponse{
		Type: ResponseTypeChannelMessageWithSource,
		Data: &ResponseData{Content: content},
	}
}
