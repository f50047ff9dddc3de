package adapters

import (
	"context"
	"encoding/json"
	"formsentry/internal/database"

	. "formsentry/internal/models"
)

// Forminator submits an ordered field list with prefixed names
// ("name-1", "email-1"); composite names arrive as objects keyed
// first-name / middle-name / last-name. Entries live in frmt_form_entry
// with per-field frmt_form_entry_meta rows.
type forminatorAdapter struct {
	baseAdapter
}

func NewForminator(db database.DB) Adapter {
	return &forminatorAdapter{
		baseAdapter: newBase(Definition{
			Name:         "Forminator",
			FormType:     FormTypeForminator,
			NativeTables: []string{"wp_frmt_form_entry", "wp_frmt_form_entry_meta"},
			AntispamChecks: []string{
				"captcha", "honeypot", "akismet",
			},
		}, db),
	}
}

type forminatorPayload struct {
	Fields []struct {
		Name  string `json:"name"`
		Type  string `json:"field_type"`
		Value any    `json:"value"`
	} `json:"fields"`
}

func (a *forminatorAdapter) Capture(tc *TestContext, raw RawSubmission) (*CapturedEntry, []CapturedField, error) {
	log := a.log.Function("Capture")

	var payload forminatorPayload
	if err := json.Unmarshal(raw.Fields, &payload); err != nil {
		return nil, nil, log.Err("failed to decode payload", err, "formId", raw.FormID)
	}

	entry := newEntry(tc, raw)
	var fields []CapturedField

	for _, field := range payload.Fields {
		switch field.Type {
		case "captcha", "honeypot":
			continue
		}

		key := slugKey(field.Name)
		if key == "" {
			continue
		}

		switch field.Type {
		case "name":
			if parts, ok := field.Value.(map[string]any); ok {
				fields = append(fields, expandName(key,
					stringValue(parts["first-name"]),
					stringValue(parts["middle-name"]),
					stringValue(parts["last-name"]))...)
				continue
			}
			fields = append(fields, flattenValue(key, field.Value)...)
		case "upload":
			if value, ok := field.Value.(string); ok && value != "" {
				fields = append(fields, uploadField(key, value))
			}
		default:
			fields = append(fields, flattenValue(key, field.Value)...)
		}
	}

	return entry, fields, nil
}

func (a *forminatorAdapter) DeleteNative(ctx context.Context, raw RawSubmission) error {
	log := a.log.Function("DeleteNative")

	if raw.NativeEntryID == "" {
		return nil
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_frmt_form_entry_meta WHERE entry_id = ?",
		raw.NativeEntryID); err != nil {
		return log.Err("failed to delete entry meta", err, "entryId", raw.NativeEntryID)
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_frmt_form_entry WHERE entry_id = ?",
		raw.NativeEntryID); err != nil {
		return log.Err("failed to delete entry", err, "entryId", raw.NativeEntryID)
	}

	return nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
