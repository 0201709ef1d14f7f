// Package textfilter cleans language-model output before it is posted to a
// Discord channel.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DiscordMessageLimit is the maximum content length Discord accepts.
const DiscordMessageLimit = 2000

const ellipsis = "…"

// softened maps words the bot should not say in a shared server to milder ones.
var softened = map[string]string{
	"fuck":      "fudge",
	"fucking":   "fudging",
	"shit":      "shoot",
	"damn":      "dang",
	"goddamn":   "gosh-dang",
	"hell":      "heck",
	"crap":      "crud",
	"bullshit":  "baloney",
	"ass":       "butt",
	"asshole":   "jerk",
	"bitch":     "jerk",
	"bastard":   "rascal",
	"dumbass":   "dummy",
	"jackass":   "goof",
	"horseshit": "nonsense",
}

var (
	// @everyone, @here and <@id>, <@!id>, <@&role> mentions
	massMention = regexp.MustCompile(`@(everyone|here)\b`)
	idMention   = regexp.MustCompile(`<@[!&]?(\d+)>`)
)

// Sanitizer neutralises pings and softens language in bot replies.
type Sanitizer struct {
	words map[string]*regexp.Regexp
	limit int
}

// NewSanitizer creates a sanitizer that truncates to Discord's message limit.
func NewSanitizer() *Sanitizer {
	s := &Sanitizer{
		words: make(map[string]*regexp.Regexp, len(softened)),
		limit: DiscordMessageLimit,
	}
	for word := range softened {
		s.words[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return s
}

// Clean applies every filter. It is safe for concurrent use.
func (s *Sanitizer) Clean(text string) string {
	text = s.Soften(text)
	text = DefuseMentions(text)
	return Truncate(text, s.limit)
}

// Soften replaces listed words, keeping the original's capitalisation.
func (s *Sanitizer) Soften(text string) string {
	for word, re := range s.words {
		replacement := softened[word]
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			return preserveCase(match, replacement)
		})
	}
	return text
}

// DefuseMentions inserts a zero-width space so mentions render as text
// instead of notifying anyone.
func DefuseMentions(text string) string {
	text = massMention.ReplaceAllString(text, "@\u200b$1")
	return idMention.ReplaceAllStringFunc(text, func(m string) string {
		return "<@\u200b" + m[2:]
	})
}

// Truncate shortens text to at most limit runes, ending with an ellipsis
// when anything was cut.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	cut := limit - utf8.RuneCountInString(ellipsis)
	if cut < 0 {
		cut = 0
	}
	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace) + ellipsis
}

func preserveCase(original, replacement string) string {
	if original == "" {
		return replacement
	}
	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}
	// Casers keep state, so each call gets its own.
	titler := cases.Title(language.English)
	if titler.String(strings.ToLower(original)) == original {
		return titler.String(replacement)
	}
	return replacement
}
