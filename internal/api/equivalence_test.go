package api_test

import (
	"testing"

	"github.com/VertexInfotech/SupportFlow/internal/models"
	"github.com/VertexInfotech/SupportFlow/internal/testutil"
	"github.com/VertexInfotech/SupportFlow/internal/widget"
)

// Replaying the same input sequence through the stateful widget binding and
// the stateless HTTP binding must yield identical response texts turn for
// turn. This is the core correctness property of having one engine behind
// both transports.
func TestStatefulStatelessEquivalence(t *testing.T) {
	inputs := []string{
		"gibberish",            // unrecognized at root
		"service",              // keyword jump
		"2",                    // Training -> serviceDetail
		"1",                    // book an appointment
		"2025-05-02 14:00",     // datetime
		"Jane Doe, bad-email",  // rejected, re-prompt
		"Jane Doe, jane@x.com", // confirmed, back at root
		"4",                    // contact
		"1",                    // call us
	}

	for _, lang := range models.Languages {
		engine := testutil.NewTestEngine(t)

		// Stateful binding.
		w := widget.Open(engine, lang)
		stateful := []string{w.Payload().Text}
		for _, input := range inputs {
			payload, err := w.Send(input)
			if err != nil {
				t.Fatalf("widget send failed: %v", err)
			}
			stateful = append(stateful, payload.Text)
		}
		w.Close()

		// Stateless binding, echoing the wire session each turn.
		h := testutil.NewTestServer(t).Handler()
		resp := postChat(t, h, models.ChatRequest{Language: lang})
		stateless := []string{resp.Response}
		for _, input := range inputs {
			state := resp.State
			resp = postChat(t, h, models.ChatRequest{Message: input, Language: lang, State: &state})
			stateless = append(stateless, resp.Response)
		}

		if len(stateful) != len(stateless) {
			t.Fatalf("[%s] turn count mismatch: %d vs %d", lang, len(stateful), len(stateless))
		}
		for i := range stateful {
			if stateful[i] != stateless[i] {
				t.Errorf("[%s] turn %d diverged:\n  stateful:  %q\n  stateless: %q", lang, i, stateful[i], stateless[i])
			}
		}
	}
}
