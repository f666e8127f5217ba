// Package command maps a recognized phrase to a known product or an exit
// intent. Matching is substring containment: "where is the milk" matches
// the product "milk".
package command

import "strings"

// Kind classifies an interpreted phrase.
type Kind int

const (
	KindNoMatch Kind = iota
	KindProduct
	KindExit
)

// String returns the kind name for logs.
func (k Kind) String() string {
	switch k {
	case KindProduct:
		return "product"
	case KindExit:
		return "exit"
	default:
		return "no_match"
	}
}

// Result is the outcome of interpreting one phrase.
type Result struct {
	Kind    Kind
	Product string // set when Kind == KindProduct
}

// Interpreter matches phrases against the configured product names and
// exit phrases. Iteration order is configuration order, and the first
// match wins, so earlier products shadow later ones.
type Interpreter struct {
	products []string
	exits    []string
}

// NewInterpreter builds an interpreter over the given product names (in
// configuration order) and exit phrases.
func NewInterpreter(products, exitPhrases []string) *Interpreter {
	return &Interpreter{
		products: lowered(products),
		exits:    lowered(exitPhrases),
	}
}

// Interpret classifies a phrase. Empty or whitespace-only phrases are
// NoMatch. Exit phrases are checked before products so "exit" wins even
// if a product name happens to contain it.
func (i *Interpreter) Interpret(phrase string) Result {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return Result{Kind: KindNoMatch}
	}

	for _, exit := range i.exits {
		if strings.Contains(phrase, exit) {
			return Result{Kind: KindExit}
		}
	}

	for _, product := range i.products {
		if strings.Contains(phrase, product) {
			return Result{Kind: KindProduct, Product: product}
		}
	}

	return Result{Kind: KindNoMatch}
}

func lowered(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
