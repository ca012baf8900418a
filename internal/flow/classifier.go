package flow

import (
	"strconv"
	"strings"
)

// ClassificationKind names the outcome of classifying one user input.
type ClassificationKind string

const (
	// KindOptionSelected means the input picked a numbered option of the
	// current state.
	KindOptionSelected ClassificationKind = "option_selected"
	// KindDirectJump means a root-state keyword shortcut matched.
	KindDirectJump ClassificationKind = "direct_jump"
	// KindUnrecognized means neither matched; the engine re-emits the
	// current prompt. This is defined fallback behavior, not an error.
	KindUnrecognized ClassificationKind = "unrecognized"
)

// Classification is the result of classifying one input against a state.
type Classification struct {
	Kind   ClassificationKind
	Option OptionDef // set for KindOptionSelected
	Target string    // set for KindDirectJump
}

// classify decides how raw input should be interpreted at the given state.
// Numeric selection always takes precedence over keyword matching, and
// keyword shortcuts only fire from the root state so that a user mid-flow
// typing a product name is not teleported out of their menu.
func (g *Graph) classify(state *State, input string) Classification {
	trimmed := strings.TrimSpace(input)

	if n, err := strconv.Atoi(trimmed); err == nil {
		id := strconv.Itoa(n)
		for _, opt := range state.Options {
			if opt.ID == id {
				return Classification{Kind: KindOptionSelected, Option: opt}
			}
		}
	}

	if state.Key == g.Root {
		lowered := strings.ToLower(trimmed)
		for _, kw := range g.Keywords {
			for _, word := range kw.Words {
				if strings.Contains(lowered, word) {
					return Classification{Kind: KindDirectJump, Target: kw.Target}
				}
			}
		}
	}

	return Classification{Kind: KindUnrecognized}
}
