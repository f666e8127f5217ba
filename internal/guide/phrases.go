package guide

import (
	"fmt"
	"strings"
)

// Phrases holds the spoken-text templates. Fields with %s verbs are
// filled by the builder methods; overriding a field changes what the
// engine says without touching its behavior.
type Phrases struct {
	Greeting      string // store name
	Prompt        string // product list
	NotFound      string
	NotUnderstood string
	NoRoute       string // product name
	PathStart     string // product name, aisle
	Arrival       string // product name
	Suggest       string // suggestion list
	Farewell      string
}

// DefaultPhrases returns the stock English phrases.
func DefaultPhrases() Phrases {
	return Phrases{
		Greeting:      "Welcome to %s. I can guide you through the store.",
		Prompt:        "You can ask for %s, or say exit to leave.",
		NotFound:      "Sorry, I could not find that product.",
		NotUnderstood: "Sorry, I did not catch that.",
		NoRoute:       "Sorry, I cannot find a way to the %s from here.",
		PathStart:     "The %s is in aisle %s. Follow my directions.",
		Arrival:       "The %s is right here.",
		Suggest:       "You might also want %s.",
		Farewell:      "Thank you for visiting. Goodbye.",
	}
}

func (p Phrases) greeting(store string) string {
	return fmt.Sprintf(p.Greeting, store)
}

func (p Phrases) prompt(products []string) string {
	return fmt.Sprintf(p.Prompt, joinList(products))
}

func (p Phrases) noRoute(product string) string {
	return fmt.Sprintf(p.NoRoute, product)
}

func (p Phrases) pathStart(product, aisle string) string {
	return fmt.Sprintf(p.PathStart, product, aisle)
}

func (p Phrases) arrival(product string, suggestions []string) string {
	text := fmt.Sprintf(p.Arrival, product)
	if len(suggestions) > 0 {
		text += " " + fmt.Sprintf(p.Suggest, joinList(suggestions))
	}
	return text
}

// joinList renders items as natural speech: "a", "a and b",
// "a, b and c".
func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
