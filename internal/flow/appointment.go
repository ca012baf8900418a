package flow

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/VertexInfotech/SupportFlow/internal/models"
)

// Appointment sub-flow step keys. These are meta-states layered on top of
// the flow graph: they have no options and accept free text only.
const (
	// StateCollectDateTime awaits the preferred appointment date and time.
	StateCollectDateTime = "collectDateTime"
	// StateCollectNameEmail awaits "Name, Email" in one message.
	StateCollectNameEmail = "collectNameEmail"
)

// WhatsAppBaseURL is the deep-link prefix for the booking confirmation.
const WhatsAppBaseURL = "https://wa.me/"

// emailRx accepts the common local@domain.tld shape. Anything stricter is
// not worth the false rejections in a chat widget.
var emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[A-Za-z]{2,}$`)

func isAppointmentState(key string) bool {
	return key == StateCollectDateTime || key == StateCollectNameEmail
}

// enterBooking starts the appointment sub-flow. The booking entry decides
// only what is being booked; the steps themselves are identical everywhere.
func (e *Engine) enterBooking(sess *models.Session, entry string) models.ResponsePayload {
	booking := e.graph.Bookings[entry]

	item := ""
	if booking.UseSelected && sess.SelectedItem != "" {
		item = sess.SelectedItem
	} else if booking.ItemKey != "" {
		item = e.text(booking.ItemKey, sess.Language)
	} else {
		item = e.text("booking.itemFallback", sess.Language)
	}

	sess.BookingItem = item
	sess.Appointment = models.Appointment{}
	sess.CurrentState = StateCollectDateTime
	slog.Debug("booking sub-flow entered", "entry", entry, "item", item)

	return models.ResponsePayload{Text: e.text("prompt.collectDateTime", sess.Language)}
}

// appointmentStep advances the booking sub-flow by one user turn.
func (e *Engine) appointmentStep(sess *models.Session, input string) models.ResponsePayload {
	switch sess.CurrentState {
	case StateCollectDateTime:
		return e.collectDateTime(sess, input)
	case StateCollectNameEmail:
		return e.collectNameEmail(sess, input)
	default:
		slog.Error("appointmentStep called outside sub-flow", "state", sess.CurrentState)
		return e.FailTurn(sess)
	}
}

// collectDateTime accepts any non-empty input verbatim; calendar validation
// is out of scope for a chat widget.
func (e *Engine) collectDateTime(sess *models.Session, input string) models.ResponsePayload {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return models.ResponsePayload{Text: e.text("prompt.collectDateTime", sess.Language)}
	}
	sess.Appointment.DateTime = trimmed
	sess.CurrentState = StateCollectNameEmail
	return models.ResponsePayload{Text: e.text("prompt.collectNameEmail", sess.Language)}
}

// collectNameEmail splits the input on the first comma and validates the
// email part. An invalid email re-prompts without advancing the step.
func (e *Engine) collectNameEmail(sess *models.Session, input string) models.ResponsePayload {
	name, email, ok := strings.Cut(input, ",")
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if !ok || name == "" || !emailRx.MatchString(email) {
		slog.Debug("booking contact rejected", "has_comma", ok)
		return models.ResponsePayload{Text: e.text("msg.invalidEmail", sess.Language)}
	}
	sess.Appointment.Name = name
	sess.Appointment.Email = email
	return e.confirm(sess)
}

// confirm emits the confirmation payload with the WhatsApp deep link,
// clears the appointment, and funnels the session back to the root menu.
func (e *Engine) confirm(sess *models.Session) models.ResponsePayload {
	summary := strings.NewReplacer(
		"{name}", sess.Appointment.Name,
		"{item}", sess.BookingItem,
		"{datetime}", sess.Appointment.DateTime,
		"{email}", sess.Appointment.Email,
	).Replace(e.text("booking.summary", sess.Language))

	link := e.deepLink(summary)
	text := summary + "\n\n" + e.text("booking.link", sess.Language) + "\n" + link

	slog.Info("appointment confirmed", "item", sess.BookingItem, "datetime", sess.Appointment.DateTime)

	sess.Appointment = models.Appointment{}
	sess.BookingItem = ""
	sess.SelectedItem = ""
	sess.CurrentState = e.graph.Root
	root := e.graph.States[e.graph.Root]

	return models.ResponsePayload{Text: text, Options: e.optionsFor(root, sess.Language)}
}

// deepLink builds the wa.me link carrying the URL-encoded summary. The
// engine only constructs the link; dispatch belongs to the caller.
func (e *Engine) deepLink(summary string) string {
	q := url.Values{}
	q.Set("text", summary)
	return WhatsAppBaseURL + e.opts.WhatsAppNumber + "?" + q.Encode()
}
