package flow

import (
	"reflect"
	"strings"
	"testing"

	"github.com/VertexInfotech/SupportFlow/internal/models"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New()
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	return e
}

func TestNewValidatesConfiguration(t *testing.T) {
	if _, err := New(); err != nil {
		t.Fatalf("embedded configuration should validate: %v", err)
	}
}

func TestStartEmitsRootPrompt(t *testing.T) {
	e := testEngine(t)
	sess, payload := e.Start(models.LanguageEnglish)

	if sess.CurrentState != e.Root() {
		t.Errorf("expected session at root, got %q", sess.CurrentState)
	}
	if payload.Text == "" {
		t.Error("expected non-empty root prompt")
	}
	if len(payload.Options) != 4 {
		t.Errorf("expected 4 root options, got %d", len(payload.Options))
	}
}

func TestStartFallsBackToEnglish(t *testing.T) {
	e := testEngine(t)
	sess, _ := e.Start(models.Language("klingon"))
	if sess.Language != models.LanguageEnglish {
		t.Errorf("expected english fallback, got %q", sess.Language)
	}
}

func TestStartLocalizedLanguages(t *testing.T) {
	e := testEngine(t)
	for _, lang := range models.Languages {
		sess, payload := e.Start(lang)
		if sess.Language != lang {
			t.Errorf("expected session language %q, got %q", lang, sess.Language)
		}
		if payload.Text == "" {
			t.Errorf("expected non-empty prompt for %q", lang)
		}
		for _, opt := range payload.Options {
			if opt.Label == "" {
				t.Errorf("expected localized label for %q option %s", lang, opt.ID)
			}
		}
	}
}

func TestMenuTransition(t *testing.T) {
	e := testEngine(t)
	sess, _ := e.Start(models.LanguageEnglish)

	payload := e.Step(&sess, "1")
	if sess.CurrentState != "products" {
		t.Fatalf("expected products state, got %q", sess.CurrentState)
	}
	if len(payload.Options) == 0 {
		t.Error("expected product options")
	}
}

func TestDetailStateCapturesSelectedItem(t *testing.T) {
	e := testEngine(t)
	sess, _ := e.Start(models.LanguageEnglish)

	e.Step(&sess, "1") // products
	payload := e.Step(&sess, "2")
	if sess.CurrentState != "productDetail" {
		t.Fatalf("expected productDetail, got %q", sess.CurrentState)
	}
	if sess.SelectedItem != "Retail POS" {
		t.Errorf("expected selected item Retail POS, got %q", sess.SelectedItem)
	}
	if !strings.Contains(payload.Text, "Retail POS") {
		t.Errorf("expected prompt to mention the selected item, got %q", payload.Text)
	}
}

func TestSelectedItemClearedOnLeavingDetail(t *testing.T) {
	e := testEngine(t)
	sess, _ := e.Start(models.LanguageEnglish)

	e.Step(&sess, "1") // products
	e.Step(&sess, "1") // productDetail (Smart ERP Suite)
	e.Step(&sess, "4") // back to products
	if sess.SelectedItem != "" {
		t.Errorf("expected selected item cleared, got %q", sess.SelectedItem)
	}
}

func TestActionLeafPurchase(t *testing.T) {
	e := testEngine(t)
	sess, _ := e.Start(models.LanguageEnglish)

	e.Step(&sess, "1") // products
	e.Step(&sess, "1") // Smart ERP Suite
	payload := e.Step(&sess, "1") // purchase

	if sess.CurrentState != "mainMenu" {
		t.Errorf("expected landing on mainMenu, got %q", sess.CurrentState)
	}
	if !strings.Contains(payload.Text, "Smart ERP Suite") {
		t.Errorf("expected purchase message to mention the item, got %q", payload.Text)
	}
	if len(payload.Options) != 4 {
		t.Errorf("expected main menu options attached, got %d", len(payload.Options))
	}
}

func TestActionLeafShowPhone(t *testing.T) {
	e := testEngine(t)
	sess, _ := e.Start(models.LanguageEnglish)

	e.Step(&sess, "4") // contact
	payload := e.Step(&sess, "1") // call us

	if sess.CurrentState != "contact" {
		t.Errorf("expected landing on contact, got %q", sess.CurrentState)
	}
	if !strings.Contains(payload.Text, DefaultContactPhone) {
		t.Errorf("expected phone number in payload, got %q", payload.Text)
	}
}

func TestActionLeafShowEmailWithCustomContact(t *testing.T) {
	e, err := New(WithContactEmail("care@example.org"))
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	sess, _ := e.Start(models.LanguageEnglish)

	e.Step(&sess, "4") // contact
	payload := e.Step(&sess, "2") // email us
	if !strings.Contains(payload.Text, "care@example.org") {
		t.Errorf("expected configured email in payload, got %q", payload.Text)
	}
}

func TestDirectJumpFromRoot(t *testing.T) {
	e := testEngine(t)
	sess, _ := e.Start(models.LanguageEnglish)

	payload := e.Step(&sess, "tell me about your products")
	if sess.CurrentState != "products" {
		t.Fatalf("expected jump to products, got %q", sess.CurrentState)
	}
	if len(payload.Options) == 0 {
		t.Error("expected product options after jump")
	}
}

func TestNoKeywordJumpMidFlow(t *testing.T) {
	e := testEngine(t)
	sess, _ := e.Start(models.LanguageEnglish)

	e.Step(&sess, "2") // services
	e.Step(&sess, "product")
	if sess.CurrentState != "services" {
		t.Errorf("expected to remain in services, got %q", sess.CurrentState)
	}
}

// Repeating an unrecognized input must yield two identical payloads and an
// unchanged session.
func TestUnrecognizedIdempotent(t *testing.T) {
	e := testEngine(t)
	sess, _ := e.Start(models.LanguageEnglish)
	e.Step(&sess, "2") // services

	before := sess
	first := e.Step(&sess, "gibberish")
	second := e.Step(&sess, "gibberish")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical payloads, got %q vs %q", first.Text, second.Text)
	}
	if !reflect.DeepEqual(before, sess) {
		t.Errorf("expected session unchanged, got %+v", sess)
	}
}

func TestStepRecoversUnknownState(t *testing.T) {
	e := testEngine(t)
	sess := models.Session{Language: models.LanguageEnglish, CurrentState: "corrupted"}

	payload := e.Step(&sess, "1")
	if sess.CurrentState != e.Root() {
		t.Errorf("expected reset to root, got %q", sess.CurrentState)
	}
	if payload.Text == "" {
		t.Error("expected a user-visible error payload")
	}
}

func TestOverLongInputUnrecognized(t *testing.T) {
	e := testEngine(t)
	sess, _ := e.Start(models.LanguageEnglish)

	long := strings.Repeat("product ", models.MaxMessageLength)
	e.Step(&sess, long)
	if sess.CurrentState != e.Root() {
		t.Errorf("expected over-long input to leave session at root, got %q", sess.CurrentState)
	}
}

func TestFailTurnResetsSession(t *testing.T) {
	e := testEngine(t)
	sess, _ := e.Start(models.LanguageHindi)
	e.Step(&sess, "1")
	e.Step(&sess, "1")

	payload := e.FailTurn(&sess)
	if sess.CurrentState != e.Root() {
		t.Errorf("expected reset to root, got %q", sess.CurrentState)
	}
	if sess.SelectedItem != "" || !sess.Appointment.Empty() {
		t.Error("expected session scratch data cleared")
	}
	if len(payload.Options) != 4 {
		t.Errorf("expected root options, got %d", len(payload.Options))
	}
}
