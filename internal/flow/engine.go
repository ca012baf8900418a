package flow

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/VertexInfotech/SupportFlow/internal/models"
)

// Default contact details used when no options are provided.
const (
	// DefaultWhatsAppNumber is the company WhatsApp number used in booking
	// deep links (digits only, country code first, as wa.me expects).
	DefaultWhatsAppNumber = "919876500000"
	// DefaultContactPhone is shown by the "call us" action leaf.
	DefaultContactPhone = "+91 98765 00000"
	// DefaultContactEmail is shown by the "email us" action leaf.
	DefaultContactEmail = "support@vertexinfotech.in"
)

// Opts holds the configuration for the Engine.
type Opts struct {
	WhatsAppNumber string
	ContactPhone   string
	ContactEmail   string
}

// Option configures the Engine.
type Option func(*Opts)

// WithWhatsAppNumber sets the company WhatsApp number for booking deep links.
func WithWhatsAppNumber(number string) Option {
	return func(o *Opts) { o.WhatsAppNumber = number }
}

// WithContactPhone sets the phone number shown by the call-us action.
func WithContactPhone(phone string) Option {
	return func(o *Opts) { o.ContactPhone = phone }
}

// WithContactEmail sets the address shown by the email-us action.
func WithContactEmail(email string) Option {
	return func(o *Opts) { o.ContactEmail = email }
}

// Engine is the dialog state machine. It owns no mutable state of its own:
// all per-conversation state lives in the Session passed into each call, so
// one Engine serves any number of concurrent conversations.
type Engine struct {
	graph   *Graph
	locales *Table
	opts    Opts
}

// Keys the engine itself needs beyond what the graph references.
var requiredKeys = []string{
	"prompt.collectDateTime",
	"prompt.collectNameEmail",
	"booking.summary",
	"booking.link",
	"booking.itemFallback",
	"msg.sorry",
	"msg.invalidEmail",
	"msg.genericError",
}

// New parses and validates the embedded flow graph and localization table
// and returns a ready engine. Any dangling transition or missing translation
// is a fatal configuration error reported here, never during a conversation.
func New(opts ...Option) (*Engine, error) {
	cfg := Opts{
		WhatsAppNumber: DefaultWhatsAppNumber,
		ContactPhone:   DefaultContactPhone,
		ContactEmail:   DefaultContactEmail,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	graph, err := parseGraph()
	if err != nil {
		return nil, err
	}
	if err := graph.validate(); err != nil {
		return nil, fmt.Errorf("flow graph validation failed: %w", err)
	}

	locales, err := parseTable()
	if err != nil {
		return nil, err
	}
	for _, key := range graph.localizationKeys() {
		if !locales.has(key) {
			return nil, fmt.Errorf("%w: %q referenced by flow graph", models.ErrMissingTranslation, key)
		}
	}
	for _, key := range requiredKeys {
		if !locales.has(key) {
			return nil, fmt.Errorf("%w: %q required by engine", models.ErrMissingTranslation, key)
		}
	}

	slog.Info("dialog engine initialized", "root", graph.Root, "states", len(graph.States))
	return &Engine{graph: graph, locales: locales, opts: cfg}, nil
}

// Root returns the key of the root menu state.
func (e *Engine) Root() string {
	return e.graph.Root
}

// ResolveState reports whether key names a state the engine can serve a turn
// from, which includes the appointment sub-flow steps.
func (e *Engine) ResolveState(key string) bool {
	if isAppointmentState(key) {
		return true
	}
	_, err := e.graph.ResolveState(key)
	return err == nil
}

// Start creates a fresh Session in the given language and returns it with
// the root prompt. Unsupported languages fall back to English.
func (e *Engine) Start(lang models.Language) (models.Session, models.ResponsePayload) {
	if !models.IsValidLanguage(lang) {
		slog.Warn("unsupported language on session start, falling back to English", "language", lang)
		lang = models.LanguageEnglish
	}
	sess := models.Session{Language: lang, CurrentState: e.graph.Root}
	root := e.graph.States[e.graph.Root]
	slog.Debug("session started", "language", lang, "state", sess.CurrentState)
	return sess, e.statePayload(root, &sess)
}

// Step processes one user turn: classify the input, apply the transition,
// and emit the response payload. The session is mutated in place; each turn
// runs to completion before the caller may submit the next one.
func (e *Engine) Step(sess *models.Session, input string) models.ResponsePayload {
	if !models.IsValidLanguage(sess.Language) {
		sess.Language = models.LanguageEnglish
	}

	if len(input) > models.MaxMessageLength {
		// Discard rather than store: an over-long answer must not reach
		// the session or the wire. The empty input re-prompts everywhere.
		slog.Warn("over-long input discarded", "length", len(input), "state", sess.CurrentState)
		input = ""
	}

	if isAppointmentState(sess.CurrentState) {
		return e.appointmentStep(sess, input)
	}

	state, err := e.graph.ResolveState(sess.CurrentState)
	if err != nil {
		// Should be impossible after startup validation; recover rather
		// than fail the conversation.
		slog.Error("session in unknown state, resetting", "state", sess.CurrentState, "error", err)
		return e.FailTurn(sess)
	}

	c := e.graph.classify(state, input)
	slog.Debug("input classified", "state", state.Key, "kind", c.Kind)

	switch c.Kind {
	case KindOptionSelected:
		return e.applyOption(sess, c.Option)
	case KindDirectJump:
		target := e.graph.States[c.Target]
		return e.moveTo(sess, target, "")
	default:
		return e.unrecognized(state, sess)
	}
}

// FailTurn resets the session to the root menu and returns the localized
// generic error payload. Transports use it to convert an internal fault into
// a user-visible response instead of silence.
func (e *Engine) FailTurn(sess *models.Session) models.ResponsePayload {
	if !models.IsValidLanguage(sess.Language) {
		sess.Language = models.LanguageEnglish
	}
	sess.CurrentState = e.graph.Root
	sess.SelectedItem = ""
	sess.BookingItem = ""
	sess.Appointment = models.Appointment{}
	root := e.graph.States[e.graph.Root]
	return models.ResponsePayload{
		Text:    e.text("msg.genericError", sess.Language) + "\n\n" + e.prompt(root, sess),
		Options: e.optionsFor(root, sess.Language),
	}
}

// applyOption dispatches an option selection to an action leaf, a booking
// entry, or a plain menu transition.
func (e *Engine) applyOption(sess *models.Session, opt OptionDef) models.ResponsePayload {
	if action, ok := e.graph.Actions[opt.Target]; ok {
		return e.applyAction(sess, action)
	}
	if _, ok := e.graph.Bookings[opt.Target]; ok {
		return e.enterBooking(sess, opt.Target)
	}
	target, err := e.graph.ResolveState(opt.Target)
	if err != nil {
		slog.Error("option target did not resolve", "target", opt.Target, "error", err)
		return e.FailTurn(sess)
	}
	label := e.text(opt.LabelKey, sess.Language)
	return e.moveTo(sess, target, label)
}

// moveTo performs a menu transition. Detail states capture the selecting
// option's localized label so later prompts can interpolate it.
func (e *Engine) moveTo(sess *models.Session, target *State, label string) models.ResponsePayload {
	if target.Detail {
		sess.SelectedItem = label
	} else {
		sess.SelectedItem = ""
	}
	sess.CurrentState = target.Key
	return e.statePayload(target, sess)
}

// applyAction emits the action's canned message and lands on its designated
// menu state.
func (e *Engine) applyAction(sess *models.Session, action Action) models.ResponsePayload {
	msg := e.interpolate(e.text(action.MessageKey, sess.Language), sess)
	landing := e.graph.States[action.Landing]
	if !landing.Detail {
		sess.SelectedItem = ""
	}
	sess.CurrentState = landing.Key
	return models.ResponsePayload{Text: msg, Options: e.optionsFor(landing, sess.Language)}
}

// unrecognized re-emits the current state's prompt and options, prefixed
// with the localized sorry line. The session is not mutated, so repeating an
// unrecognized input yields an identical payload.
func (e *Engine) unrecognized(state *State, sess *models.Session) models.ResponsePayload {
	return models.ResponsePayload{
		Text:    e.text("msg.sorry", sess.Language) + "\n\n" + e.prompt(state, sess),
		Options: e.optionsFor(state, sess.Language),
	}
}

// statePayload builds the localized prompt and options for a state.
func (e *Engine) statePayload(state *State, sess *models.Session) models.ResponsePayload {
	return models.ResponsePayload{
		Text:    e.prompt(state, sess),
		Options: e.optionsFor(state, sess.Language),
	}
}

func (e *Engine) prompt(state *State, sess *models.Session) string {
	return e.interpolate(e.text(state.PromptKey, sess.Language), sess)
}

// optionsFor resolves a state's option labels for the given language so the
// transport never needs the localization table.
func (e *Engine) optionsFor(state *State, lang models.Language) []models.Option {
	opts := make([]models.Option, 0, len(state.Options))
	for _, def := range state.Options {
		opts = append(opts, models.Option{
			ID:     def.ID,
			Label:  e.text(def.LabelKey, lang),
			Target: def.Target,
		})
	}
	return opts
}

// text resolves a localization key. Misses are impossible after startup
// validation; if one happens anyway it is logged and an empty string
// returned rather than failing the conversation.
func (e *Engine) text(key string, lang models.Language) string {
	value, err := e.locales.Localize(key, lang)
	if err != nil {
		slog.Error("localization lookup failed", "key", key, "language", lang, "error", err)
		return ""
	}
	return value
}

// interpolate substitutes session and engine placeholders into a template.
func (e *Engine) interpolate(s string, sess *models.Session) string {
	item := sess.SelectedItem
	if item == "" {
		item = sess.BookingItem
	}
	r := strings.NewReplacer(
		"{item}", item,
		"{phone}", e.opts.ContactPhone,
		"{email}", e.opts.ContactEmail,
	)
	return r.Replace(s)
}
