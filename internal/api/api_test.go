package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/VertexInfotech/SupportFlow/internal/models"
	"github.com/VertexInfotech/SupportFlow/internal/testutil"
)

func postChat(t *testing.T, h http.Handler, req models.ChatRequest) models.ChatResponse {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, testutil.CreateHTTPRequest(t, http.MethodPost, "/api/v1/chat", req))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp models.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return resp
}

func TestChatMethodNotAllowed(t *testing.T) {
	h := testutil.NewTestServer(t).Handler()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/chat", nil))
	testutil.AssertHTTPStatus(t, http.StatusMethodNotAllowed, rr.Code, "GET /api/v1/chat")
	if allow := rr.Header().Get("Allow"); allow != http.MethodPost {
		t.Errorf("expected Allow: POST, got %q", allow)
	}
}

func TestChatInvalidJSON(t *testing.T) {
	h := testutil.NewTestServer(t).Handler()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader([]byte("{nope"))))
	testutil.AssertHTTPStatus(t, http.StatusBadRequest, rr.Code, "malformed body")
	testutil.AssertJSONResponse(t, rr, "error")
}

func TestChatStartsNewSession(t *testing.T) {
	h := testutil.NewTestServer(t).Handler()
	resp := postChat(t, h, models.ChatRequest{Language: models.LanguageEnglish})

	if resp.State.Step != "mainMenu" {
		t.Errorf("expected mainMenu step, got %q", resp.State.Step)
	}
	if resp.Response == "" {
		t.Error("expected root prompt")
	}
	if len(resp.State.Options) != 4 {
		t.Errorf("expected 4 options on the wire, got %d", len(resp.State.Options))
	}
}

func TestChatEchoedStateAdvances(t *testing.T) {
	h := testutil.NewTestServer(t).Handler()

	first := postChat(t, h, models.ChatRequest{Language: models.LanguageEnglish})
	second := postChat(t, h, models.ChatRequest{
		Message:  "1",
		Language: models.LanguageEnglish,
		State:    &first.State,
	})
	if second.State.Step != "products" {
		t.Errorf("expected products step, got %q", second.State.Step)
	}
}

// A malformed or unknown wire state starts a new session instead of failing
// the request.
func TestChatUnknownStateStartsOver(t *testing.T) {
	h := testutil.NewTestServer(t).Handler()

	resp := postChat(t, h, models.ChatRequest{
		Message:  "",
		Language: models.LanguageEnglish,
		State:    &models.SessionWire{Step: "corrupted", Language: models.LanguageEnglish},
	})
	if resp.State.Step != "mainMenu" {
		t.Errorf("expected fresh session at mainMenu, got %q", resp.State.Step)
	}
}

// A state field that is not even a SessionWire object (wrong JSON type)
// must not fail the request; the message is processed against a fresh
// session. Only a body that is not JSON at all earns a 400.
func TestChatTypeMalformedStateStartsOver(t *testing.T) {
	h := testutil.NewTestServer(t).Handler()

	body := []byte(`{"message":"product","language":"english","state":"junk"}`)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(body)))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "type-malformed state")

	var resp models.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.State.Step != "products" {
		t.Errorf("expected fresh session to process the message, got step %q", resp.State.Step)
	}

	// Same for a state of the wrong composite type.
	body = []byte(`{"message":"","language":"english","state":[1,2]}`)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(body)))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "array state")
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.State.Step != "mainMenu" {
		t.Errorf("expected fresh session at mainMenu, got %q", resp.State.Step)
	}
}

func TestChatKeywordOnFirstMessage(t *testing.T) {
	h := testutil.NewTestServer(t).Handler()

	resp := postChat(t, h, models.ChatRequest{Message: "product", Language: models.LanguageEnglish})
	if resp.State.Step != "products" {
		t.Errorf("expected keyword jump on first message, got %q", resp.State.Step)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := testutil.NewTestServer(t).Handler()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "GET /health")
}

func TestConversationLifecycle(t *testing.T) {
	h := testutil.NewTestServer(t).Handler()

	// Create
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, testutil.CreateHTTPRequest(t, http.MethodPost, "/api/v1/conversations",
		models.ConversationRequest{Language: models.LanguageMarathi}))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created struct {
		Status string                      `json:"status"`
		Result models.ConversationResponse `json:"result"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if created.Result.ID == "" {
		t.Fatal("expected conversation id")
	}
	if created.Result.State.Step != "mainMenu" {
		t.Errorf("expected mainMenu, got %q", created.Result.State.Step)
	}

	// One turn
	msg := models.MessageRequest{Message: "2"}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, testutil.CreateHTTPRequest(t, http.MethodPost, "/api/v1/conversations/"+created.Result.ID+"/messages", msg))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var turned struct {
		Result models.ConversationResponse `json:"result"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&turned); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if turned.Result.State.Step != "services" {
		t.Errorf("expected services, got %q", turned.Result.State.Step)
	}

	// Delete
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/v1/conversations/"+created.Result.ID, nil))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "delete conversation")

	// Further turns 404
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, testutil.CreateHTTPRequest(t, http.MethodPost, "/api/v1/conversations/"+created.Result.ID+"/messages", msg))
	testutil.AssertHTTPStatus(t, http.StatusNotFound, rr.Code, "turn after delete")
}

func TestConversationMessageUnknownID(t *testing.T) {
	h := testutil.NewTestServer(t).Handler()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, testutil.CreateHTTPRequest(t, http.MethodPost, "/api/v1/conversations/nope/messages",
		models.MessageRequest{Message: "1"}))
	testutil.AssertHTTPStatus(t, http.StatusNotFound, rr.Code, "unknown conversation id")
}
