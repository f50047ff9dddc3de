package models

import "encoding/json"

// TestContext carries the per-request derived test state through the
// pipeline. It is computed once near the start of a request and never
// persisted; suppression flags are one-way latches for the life of the
// request.
type TestContext struct {
	// Recognized is set when the requester passed the identity gate, i.e.
	// the request comes from the authorized bot. Only recognized requests
	// may enter the capture pipeline; a recognized request without a
	// resolvable test id still captures under a synthesized uid.
	Recognized        bool   `json:"recognized"`
	TestID            string `json:"testId"`
	VisitorIdentity   string `json:"visitorIdentity"`
	TargetKey         string `json:"targetKey"`
	RecipientOverride string `json:"recipientOverride"`
	SuppressReceipt   bool   `json:"suppressReceipt"`
	SuppressWebhooks  bool   `json:"suppressWebhooks"`
}

func (tc *TestContext) Active() bool {
	return tc != nil && tc.TestID != ""
}

// FromBot reports whether the identity gate recognized the requester.
func (tc *TestContext) FromBot() bool {
	return tc != nil && tc.Recognized
}

// EmailMessage is the notification a form engine is about to send for a
// submission. Adapters rewrite its recipients before the engine-side shim
// hands it to the mailer.
type EmailMessage struct {
	To      []string `json:"to"`
	CC      []string `json:"cc"`
	BCC     []string `json:"bcc"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// RawSubmission is a submission-complete event as delivered by a form
// engine's webhook. Fields holds the engine's native payload; each adapter
// knows its own shape.
type RawSubmission struct {
	FormType      FormType        `json:"formType"`
	FormID        string          `json:"formId"`
	NativeEntryID string          `json:"nativeEntryId"`
	SourceURL     string          `json:"sourceUrl"`
	Fields        json.RawMessage `json:"fields"`
	Email         *EmailMessage   `json:"email,omitempty"`
}
