// Package flow implements the conversation engine: the static flow graph,
// the localization table, input classification, and the dialog state machine
// with its appointment booking sub-flow.
//
// The graph and all user-facing strings are embedded YAML documents parsed
// once at engine construction. Any dangling transition or missing
// translation is reported there and prevents the engine from serving any
// conversation.
package flow

import (
	"fmt"
	"log/slog"
	"strconv"

	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/VertexInfotech/SupportFlow/internal/models"
)

//go:embed flow.yaml
var flowConfig []byte

// OptionDef is one transition out of a state as declared in flow.yaml. The
// numeric id is assigned from position when the graph is parsed.
type OptionDef struct {
	ID       string
	LabelKey string `yaml:"label"`
	Target   string `yaml:"target"`
}

// State is a node of the conversation graph.
type State struct {
	Key       string
	PromptKey string      `yaml:"prompt"`
	Detail    bool        `yaml:"detail"`
	Options   []OptionDef `yaml:"options"`
}

// Action is an effectful-but-immediate leaf: a canned message followed by a
// move to the landing state.
type Action struct {
	MessageKey string `yaml:"message"`
	Landing    string `yaml:"landing"`
}

// Booking is an entry point into the appointment sub-flow.
type Booking struct {
	ItemKey     string `yaml:"item"`
	UseSelected bool   `yaml:"useSelected"`
}

// Keyword is a root-state free-text shortcut.
type Keyword struct {
	Words  []string `yaml:"words"`
	Target string   `yaml:"target"`
}

// Graph is the static, validated conversation graph. It is read-only after
// construction and safe to share across any number of concurrent turns.
type Graph struct {
	Root     string             `yaml:"root"`
	States   map[string]*State  `yaml:"states"`
	Actions  map[string]Action  `yaml:"actions"`
	Bookings map[string]Booking `yaml:"bookings"`
	Keywords []Keyword          `yaml:"keywords"`
}

// parseGraph decodes the embedded flow document and assigns option ids.
func parseGraph() (*Graph, error) {
	var g Graph
	if err := yaml.Unmarshal(flowConfig, &g); err != nil {
		return nil, fmt.Errorf("failed to parse flow graph: %w", err)
	}
	for key, st := range g.States {
		st.Key = key
		for i := range st.Options {
			st.Options[i].ID = strconv.Itoa(i + 1)
		}
	}
	slog.Debug("flow graph parsed", "states", len(g.States), "actions", len(g.Actions), "bookings", len(g.Bookings))
	return &g, nil
}

// ResolveState returns the state for key, or an error if it does not exist.
func (g *Graph) ResolveState(key string) (*State, error) {
	st, ok := g.States[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownState, key)
	}
	return st, nil
}

// validate walks every option of every state and confirms each target
// resolves to a state, an action leaf, or a booking entry, and that every
// action lands on a real state. Called once from New; a failure here is a
// fatal configuration error.
func (g *Graph) validate() error {
	if _, ok := g.States[g.Root]; !ok {
		return fmt.Errorf("%w: root state %q", models.ErrDanglingTarget, g.Root)
	}
	for key, st := range g.States {
		for i, opt := range st.Options {
			if opt.ID != strconv.Itoa(i+1) {
				return fmt.Errorf("%w: state %q option %d", models.ErrBadOptionIDs, key, i)
			}
			if !g.targetExists(opt.Target) {
				return fmt.Errorf("%w: state %q option %q -> %q", models.ErrDanglingTarget, key, opt.ID, opt.Target)
			}
		}
	}
	for name, a := range g.Actions {
		if _, ok := g.States[a.Landing]; !ok {
			return fmt.Errorf("%w: action %q landing %q", models.ErrDanglingTarget, name, a.Landing)
		}
	}
	for _, kw := range g.Keywords {
		if _, ok := g.States[kw.Target]; !ok {
			return fmt.Errorf("%w: keyword %v -> %q", models.ErrDanglingTarget, kw.Words, kw.Target)
		}
		if len(kw.Words) == 0 {
			return fmt.Errorf("keyword entry for %q has no words", kw.Target)
		}
	}
	return nil
}

func (g *Graph) targetExists(target string) bool {
	if _, ok := g.States[target]; ok {
		return true
	}
	if _, ok := g.Actions[target]; ok {
		return true
	}
	if _, ok := g.Bookings[target]; ok {
		return true
	}
	return false
}

// localizationKeys collects every localization key the graph references, so
// the table can be checked for completeness at startup.
func (g *Graph) localizationKeys() []string {
	var keys []string
	for _, st := range g.States {
		keys = append(keys, st.PromptKey)
		for _, opt := range st.Options {
			keys = append(keys, opt.LabelKey)
		}
	}
	for _, a := range g.Actions {
		keys = append(keys, a.MessageKey)
	}
	for _, b := range g.Bookings {
		if b.ItemKey != "" {
			keys = append(keys, b.ItemKey)
		}
	}
	return keys
}
