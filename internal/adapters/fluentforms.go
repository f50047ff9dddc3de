package adapters

import (
	"context"
	"encoding/json"
	"formsentry/internal/database"

	. "formsentry/internal/models"
)

// Fluent Forms delivers the submission response as one JSON object keyed
// by field name; composite fields (names, addresses) arrive as nested
// objects. Submissions persist in fluentform_submissions with per-field
// rows in fluentform_entry_details.
type fluentFormsAdapter struct {
	baseAdapter
	drops dropSet
}

func NewFluentForms(db database.DB) Adapter {
	return &fluentFormsAdapter{
		baseAdapter: newBase(Definition{
			Name:         "FluentForms",
			FormType:     FormTypeFluentForms,
			NativeTables: []string{"wp_fluentform_submissions", "wp_fluentform_entry_details", "wp_fluentform_submission_meta"},
			AntispamChecks: []string{
				"recaptcha", "hcaptcha", "turnstile", "honeypot", "akismet",
			},
		}, db),
		drops: newDropSet(
			"__fluent_form_embded_post_id",
			"_fluentform_*",
			"_wp_http_referer",
			"g-recaptcha-response",
			"h-captcha-response",
			"cf-turnstile-response",
		),
	}
}

func (a *fluentFormsAdapter) Capture(tc *TestContext, raw RawSubmission) (*CapturedEntry, []CapturedField, error) {
	log := a.log.Function("Capture")

	var response map[string]any
	if err := json.Unmarshal(raw.Fields, &response); err != nil {
		return nil, nil, log.Err("failed to decode payload", err, "formId", raw.FormID)
	}

	entry := newEntry(tc, raw)
	var fields []CapturedField

	for _, name := range sortedKeys(response) {
		if a.drops.contains(name) {
			continue
		}
		fields = append(fields, flattenValue(slugKey(name), response[name])...)
	}

	return entry, fields, nil
}

func (a *fluentFormsAdapter) DeleteNative(ctx context.Context, raw RawSubmission) error {
	log := a.log.Function("DeleteNative")

	if raw.NativeEntryID == "" {
		return nil
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_fluentform_entry_details WHERE submission_id = ?",
		raw.NativeEntryID); err != nil {
		return log.Err("failed to delete entry details", err, "submissionId", raw.NativeEntryID)
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_fluentform_submission_meta WHERE response_id = ?",
		raw.NativeEntryID); err != nil {
		return log.Err("failed to delete submission meta", err, "submissionId", raw.NativeEntryID)
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_fluentform_submissions WHERE id = ?",
		raw.NativeEntryID); err != nil {
		return log.Err("failed to delete submission", err, "submissionId", raw.NativeEntryID)
	}

	return nil
}
