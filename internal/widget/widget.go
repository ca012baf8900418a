// Package widget is the stateful in-process binding of the dialog engine,
// used by embedded chat widgets that keep the session in local memory across
// turns. Typed input and recognized speech go through the same Send path.
package widget

import (
	"log/slog"
	"sync"

	"github.com/VertexInfotech/SupportFlow/internal/flow"
	"github.com/VertexInfotech/SupportFlow/internal/models"
)

// Widget holds one conversation. Each turn runs to completion under the
// mutex, so no state mutation is observable mid-turn.
type Widget struct {
	mu     sync.Mutex
	engine *flow.Engine
	sess   models.Session
	last   models.ResponsePayload
	closed bool
}

// Open starts a conversation in the given language and emits the root
// prompt as the widget's first payload.
func Open(engine *flow.Engine, lang models.Language) *Widget {
	sess, payload := engine.Start(lang)
	slog.Debug("widget opened", "language", sess.Language)
	return &Widget{engine: engine, sess: sess, last: payload}
}

// Send processes one user turn and returns the response payload. A panic in
// the engine is converted into the localized generic-error payload, never
// propagated to the caller.
func (w *Widget) Send(text string) (models.ResponsePayload, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return models.ResponsePayload{}, models.ErrWidgetClosed
	}
	w.last = w.step(text)
	return w.last, nil
}

func (w *Widget) step(text string) (payload models.ResponsePayload) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("widget turn panicked", "panic", rec, "state", w.sess.CurrentState)
			payload = w.engine.FailTurn(&w.sess)
		}
	}()
	return w.engine.Step(&w.sess, text)
}

// SetLanguage resets the session in the new language and re-emits the root
// prompt. Changing language always starts the conversation over.
func (w *Widget) SetLanguage(lang models.Language) (models.ResponsePayload, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return models.ResponsePayload{}, models.ErrWidgetClosed
	}
	w.sess, w.last = w.engine.Start(lang)
	slog.Debug("widget language changed", "language", w.sess.Language)
	return w.last, nil
}

// Payload returns the most recent response payload.
func (w *Widget) Payload() models.ResponsePayload {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Session returns a copy of the current session.
func (w *Widget) Session() models.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sess
}

// Close ends the conversation; further sends fail with ErrWidgetClosed.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}
