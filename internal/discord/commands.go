package discord

const (
	CommandQuote  = "quote"
	CommandAdvice = "advice"
	CommandAttack = "attack"
	CommandBattle = "battle"

	OptionQuestion = "question"
)

// ApplicationCommand is a slash command definition for bulk registration.
type ApplicationCommand struct {
	Name             string                     `json:"name"`
	Description      string                     `json:"description"`
	Type             int                        `json:"type,omitempty"`
	Options          []ApplicationCommandOption `json:"options,omitempty"`
	IntegrationTypes []int                      `json:"integration_types,omitempty"`
	Contexts         []int                      `json:"contexts,omitempty"`
}

type ApplicationCommandOption struct {
	Type        int    `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required,omitempty"`
}

var (
	// Installable to guilds and users, usable in guilds, bot DMs and private channels
	everywhereIntegrations = []int{0, 1}
	everywhereContexts     = []int{0, 1, 2}
)

// Commands returns every slash command the bot handles.
func Commands() []ApplicationCommand {
	return []ApplicationCommand{
		{
			Name:             CommandQuote,
			Description:      "Produces a random quote from thinkers like Alan Watts, Buddha, or Ram Dass.",
			Type:             1,
			IntegrationTypes: everywhereIntegrations,
			Contexts:         everywhereContexts,
		},
		{
			Name:        CommandAdvice,
			Description: "Ask for advice!",
			Options: []ApplicationCommandOption{
				{
					Type:        OptionTypeString,
					Name:        OptionQuestion,
					Description: "What do you want advice on?",
					Required:    true,
				},
			},
		},
		{
			Name:             CommandAttack,
			Description:      "Attack the possessed Ram Deus! Join the battle to free him from the demon! ⚔️👹",
			Type:             1,
			IntegrationTypes: everywhereIntegrations,
			Contexts:         everywhereContexts,
		},
		{
			Name:             CommandBattle,
			Description:      "Check the current battle status against the possessed Ram Deus 👹⚔️",
			Type:             1,
			IntegrationTypes: everywhereIntegrations,
			Contexts:         everywhereContexts,
		},
	}
}
