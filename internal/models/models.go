// Package models defines the core data structures for SupportFlow.
//
// It includes the conversation session, the wire types exchanged with
// transport bindings, and shared validation errors.
package models

import "errors"

// Language identifies one of the supported conversation languages.
type Language string

const (
	// LanguageEnglish is the default conversation language.
	LanguageEnglish Language = "english"
	// LanguageHindi selects Hindi prompts and labels.
	LanguageHindi Language = "hindi"
	// LanguageMarathi selects Marathi prompts and labels.
	LanguageMarathi Language = "marathi"
)

// Languages lists every supported language. Localization completeness is
// checked against this list at engine construction.
var Languages = []Language{LanguageEnglish, LanguageHindi, LanguageMarathi}

// IsValidLanguage checks if the given language is supported.
func IsValidLanguage(l Language) bool {
	switch l {
	case LanguageEnglish, LanguageHindi, LanguageMarathi:
		return true
	default:
		return false
	}
}

// Validation constants for input handling
const (
	// MaxMessageLength defines the maximum accepted length for one user turn
	MaxMessageLength = 1024
)

// Error variables for better error handling and testability
var (
	ErrUnknownState       = errors.New("unknown conversation state")
	ErrUnknownLanguage    = errors.New("unsupported language")
	ErrMissingTranslation = errors.New("missing translation")
	ErrDanglingTarget     = errors.New("option target does not resolve to a state")
	ErrBadOptionIDs       = errors.New("option ids must be consecutive digits starting at 1")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrMessageTooLong     = errors.New("message exceeds maximum length")
	ErrWidgetClosed       = errors.New("widget is closed")
	ErrConversationGone   = errors.New("conversation not found")
)

// Option is a numbered, pre-localized transition out of a state. Labels are
// resolved for the session's language before an Option leaves the engine, so
// transports never touch the localization table.
type Option struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Target string `json:"target"`
}

// ResponsePayload is what the engine hands back after each turn.
type ResponsePayload struct {
	Text    string   `json:"text"`
	Options []Option `json:"options,omitempty"`
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// Error creates an error API response with the given message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
