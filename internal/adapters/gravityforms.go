package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"formsentry/internal/database"
	. "formsentry/internal/models"
)

// GravityForms stores submissions as an entry row plus one meta row per
// input, keyed by numeric input ids; composite name fields use dotted
// sub-input ids (3=first, 4=middle, 6=last).
type gravityFormsAdapter struct {
	baseAdapter
}

func NewGravityForms(db database.DB) Adapter {
	return &gravityFormsAdapter{
		baseAdapter: newBase(Definition{
			Name:         "GravityForms",
			FormType:     FormTypeGravityForms,
			NativeTables: []string{"wp_gf_entry", "wp_gf_entry_meta"},
			AntispamChecks: []string{
				"recaptcha", "hcaptcha", "honeypot", "akismet",
			},
		}, db),
	}
}

type gravityFormsPayload struct {
	Form struct {
		Fields []struct {
			ID    int    `json:"id"`
			Type  string `json:"type"`
			Label string `json:"label"`
		} `json:"fields"`
	} `json:"form"`
	Entry map[string]any `json:"entry"`
}

func (a *gravityFormsAdapter) Capture(tc *TestContext, raw RawSubmission) (*CapturedEntry, []CapturedField, error) {
	log := a.log.Function("Capture")

	var payload gravityFormsPayload
	if err := json.Unmarshal(raw.Fields, &payload); err != nil {
		return nil, nil, log.Err("failed to decode payload", err, "formId", raw.FormID)
	}

	entry := newEntry(tc, raw)
	var fields []CapturedField

	for _, field := range payload.Form.Fields {
		key := slugKey(field.Label)
		if key == "" {
			key = fmt.Sprintf("field_%d", field.ID)
		}

		switch field.Type {
		case "captcha", "honeypot":
			// Anti-spam inputs are classified drops, never captured.
			continue
		case "name":
			fields = append(fields, expandName(key,
				a.inputString(payload.Entry, field.ID, 3),
				a.inputString(payload.Entry, field.ID, 4),
				a.inputString(payload.Entry, field.ID, 6),
			)...)
		case "fileupload":
			if value, ok := payload.Entry[fmt.Sprintf("%d", field.ID)].(string); ok && value != "" {
				fields = append(fields, uploadField(key, value))
			}
		default:
			value, ok := payload.Entry[fmt.Sprintf("%d", field.ID)]
			if !ok {
				continue
			}
			fields = append(fields, flattenValue(key, value)...)
		}
	}

	return entry, fields, nil
}

func (a *gravityFormsAdapter) inputString(entry map[string]any, fieldID, inputID int) string {
	value, _ := entry[fmt.Sprintf("%d.%d", fieldID, inputID)].(string)
	return value
}

func (a *gravityFormsAdapter) DeleteNative(ctx context.Context, raw RawSubmission) error {
	log := a.log.Function("DeleteNative")

	if raw.NativeEntryID == "" {
		return nil
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_gf_entry_meta WHERE entry_id = ?", raw.NativeEntryID); err != nil {
		return log.Err("failed to delete entry meta", err, "entryId", raw.NativeEntryID)
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_gf_entry WHERE id = ?", raw.NativeEntryID); err != nil {
		return log.Err("failed to delete entry", err, "entryId", raw.NativeEntryID)
	}

	return nil
}
