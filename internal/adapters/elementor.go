package adapters

import (
	"context"
	"encoding/json"
	"formsentry/internal/database"
	"sort"

	. "formsentry/internal/models"
)

// Elementor Forms submits record fields keyed by custom id, each carrying
// its type and value. Submissions persist in e_submissions with
// per-field e_submissions_values rows and an actions log.
type elementorAdapter struct {
	baseAdapter
}

func NewElementor(db database.DB) Adapter {
	return &elementorAdapter{
		baseAdapter: newBase(Definition{
			Name:         "Elementor",
			FormType:     FormTypeElementor,
			NativeTables: []string{"wp_e_submissions", "wp_e_submissions_values", "wp_e_submissions_actions_log"},
			AntispamChecks: []string{
				"recaptcha", "recaptcha_v3", "honeypot", "akismet",
			},
		}, db),
	}
}

type elementorField struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Value any    `json:"value"`
}

type elementorPayload struct {
	Fields map[string]elementorField `json:"fields"`
}

func (a *elementorAdapter) Capture(tc *TestContext, raw RawSubmission) (*CapturedEntry, []CapturedField, error) {
	log := a.log.Function("Capture")

	var payload elementorPayload
	if err := json.Unmarshal(raw.Fields, &payload); err != nil {
		return nil, nil, log.Err("failed to decode payload", err, "formId", raw.FormID)
	}

	entry := newEntry(tc, raw)
	var fields []CapturedField

	for _, id := range sortedFieldKeys(payload.Fields) {
		field := payload.Fields[id]

		switch field.Type {
		case "recaptcha", "recaptcha_v3", "honeypot":
			continue
		}

		key := slugKey(id)
		if key == "" {
			key = slugKey(field.Title)
		}
		if key == "" {
			continue
		}

		if field.Type == "upload" {
			if value, ok := field.Value.(string); ok && value != "" {
				fields = append(fields, uploadField(key, value))
			}
			continue
		}

		fields = append(fields, flattenValue(key, field.Value)...)
	}

	return entry, fields, nil
}

func (a *elementorAdapter) DeleteNative(ctx context.Context, raw RawSubmission) error {
	log := a.log.Function("DeleteNative")

	if raw.NativeEntryID == "" {
		return nil
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_e_submissions_values WHERE submission_id = ?",
		raw.NativeEntryID); err != nil {
		return log.Err("failed to delete submission values", err, "submissionId", raw.NativeEntryID)
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_e_submissions_actions_log WHERE submission_id = ?",
		raw.NativeEntryID); err != nil {
		return log.Err("failed to delete actions log", err, "submissionId", raw.NativeEntryID)
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_e_submissions WHERE id = ?",
		raw.NativeEntryID); err != nil {
		return log.Err("failed to delete submission", err, "submissionId", raw.NativeEntryID)
	}

	return nil
}

func sortedFieldKeys(m map[string]elementorField) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
