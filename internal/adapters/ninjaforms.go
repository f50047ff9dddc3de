package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"formsentry/internal/database"
	. "formsentry/internal/models"
)

// Ninja Forms submits an ordered field list; each field carries its own
// key, label and type. Submissions persist as nf_sub posts with meta rows.
type ninjaFormsAdapter struct {
	baseAdapter
}

func NewNinjaForms(db database.DB) Adapter {
	return &ninjaFormsAdapter{
		baseAdapter: newBase(Definition{
			Name:         "NinjaForms",
			FormType:     FormTypeNinjaForms,
			NativeTables: []string{"wp_posts", "wp_postmeta"},
			AntispamChecks: []string{
				"recaptcha", "hcaptcha", "honeypot", "akismet",
			},
		}, db),
	}
}

type ninjaFormsPayload struct {
	Fields []struct {
		ID    int    `json:"id"`
		Key   string `json:"key"`
		Type  string `json:"type"`
		Label string `json:"label"`
		Value any    `json:"value"`
	} `json:"fields"`
}

func (a *ninjaFormsAdapter) Capture(tc *TestContext, raw RawSubmission) (*CapturedEntry, []CapturedField, error) {
	log := a.log.Function("Capture")

	var payload ninjaFormsPayload
	if err := json.Unmarshal(raw.Fields, &payload); err != nil {
		return nil, nil, log.Err("failed to decode payload", err, "formId", raw.FormID)
	}

	entry := newEntry(tc, raw)
	var fields []CapturedField

	for _, field := range payload.Fields {
		switch field.Type {
		case "hp", "recaptcha", "spam", "submit":
			continue
		}

		key := slugKey(field.Key)
		if key == "" {
			key = slugKey(field.Label)
		}
		if key == "" {
			key = fmt.Sprintf("field_%d", field.ID)
		}

		if field.Type == "file_upload" {
			if value, ok := field.Value.(string); ok && value != "" {
				fields = append(fields, uploadField(key, value))
			}
			continue
		}

		fields = append(fields, flattenValue(key, field.Value)...)
	}

	return entry, fields, nil
}

func (a *ninjaFormsAdapter) DeleteNative(ctx context.Context, raw RawSubmission) error {
	log := a.log.Function("DeleteNative")

	if raw.NativeEntryID == "" {
		return nil
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_postmeta WHERE post_id = ?", raw.NativeEntryID); err != nil {
		return log.Err("failed to delete submission meta", err, "postId", raw.NativeEntryID)
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_posts WHERE id = ? AND post_type = 'nf_sub'",
		raw.NativeEntryID); err != nil {
		return log.Err("failed to delete submission post", err, "postId", raw.NativeEntryID)
	}

	return nil
}
