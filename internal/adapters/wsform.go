package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"formsentry/internal/database"

	. "formsentry/internal/models"
)

// WS Form submits a field list keyed by numeric field id with the label
// carried alongside. Submissions persist in wsf_submit with per-field
// wsf_submit_meta rows.
type wsFormAdapter struct {
	baseAdapter
}

func NewWSForm(db database.DB) Adapter {
	return &wsFormAdapter{
		baseAdapter: newBase(Definition{
			Name:         "WSForm",
			FormType:     FormTypeWSForm,
			NativeTables: []string{"wp_wsf_submit", "wp_wsf_submit_meta"},
			AntispamChecks: []string{
				"recaptcha", "hcaptcha", "turnstile", "honeypot",
			},
		}, db),
	}
}

type wsFormPayload struct {
	Fields []struct {
		ID    int    `json:"id"`
		Type  string `json:"type"`
		Label string `json:"label"`
		Value any    `json:"value"`
	} `json:"fields"`
}

func (a *wsFormAdapter) Capture(tc *TestContext, raw RawSubmission) (*CapturedEntry, []CapturedField, error) {
	log := a.log.Function("Capture")

	var payload wsFormPayload
	if err := json.Unmarshal(raw.Fields, &payload); err != nil {
		return nil, nil, log.Err("failed to decode payload", err, "formId", raw.FormID)
	}

	entry := newEntry(tc, raw)
	var fields []CapturedField

	for _, field := range payload.Fields {
		switch field.Type {
		case "recaptcha", "hcaptcha", "turnstile", "honeypot", "submit":
			continue
		}

		key := slugKey(field.Label)
		if key == "" {
			key = fmt.Sprintf("field_%d", field.ID)
		}

		if field.Type == "file" {
			if value, ok := field.Value.(string); ok && value != "" {
				fields = append(fields, uploadField(key, value))
			}
			continue
		}

		fields = append(fields, flattenValue(key, field.Value)...)
	}

	return entry, fields, nil
}

func (a *wsFormAdapter) DeleteNative(ctx context.Context, raw RawSubmission) error {
	log := a.log.Function("DeleteNative")

	if raw.NativeEntryID == "" {
		return nil
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_wsf_submit_meta WHERE parent_id = ?",
		raw.NativeEntryID); err != nil {
		return log.Err("failed to delete submit meta", err, "submitId", raw.NativeEntryID)
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_wsf_submit WHERE id = ?",
		raw.NativeEntryID); err != nil {
		return log.Err("failed to delete submit", err, "submitId", raw.NativeEntryID)
	}

	return nil
}
