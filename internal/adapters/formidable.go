package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"formsentry/internal/database"
	. "formsentry/internal/models"
)

// Formidable persists submissions as an item row plus one meta row per
// field; name fields store their parts as a sub-map.
type formidableAdapter struct {
	baseAdapter
}

func NewFormidable(db database.DB) Adapter {
	return &formidableAdapter{
		baseAdapter: newBase(Definition{
			Name:         "Formidable",
			FormType:     FormTypeFormidable,
			NativeTables: []string{"wp_frm_items", "wp_frm_item_metas"},
			AntispamChecks: []string{
				"recaptcha", "hcaptcha", "honeypot", "akismet", "comment_blacklist",
			},
		}, db),
	}
}

type formidablePayload struct {
	Metas []struct {
		FieldID   int    `json:"field_id"`
		FieldKey  string `json:"field_key"`
		FieldType string `json:"field_type"`
		Value     any    `json:"value"`
	} `json:"metas"`
}

func (a *formidableAdapter) Capture(tc *TestContext, raw RawSubmission) (*CapturedEntry, []CapturedField, error) {
	log := a.log.Function("Capture")

	var payload formidablePayload
	if err := json.Unmarshal(raw.Fields, &payload); err != nil {
		return nil, nil, log.Err("failed to decode payload", err, "formId", raw.FormID)
	}

	entry := newEntry(tc, raw)
	var fields []CapturedField

	for _, meta := range payload.Metas {
		if meta.FieldType == "captcha" {
			continue
		}

		key := slugKey(meta.FieldKey)
		if key == "" {
			key = fmt.Sprintf("field_%d", meta.FieldID)
		}

		switch meta.FieldType {
		case "name":
			parts, ok := meta.Value.(map[string]any)
			if !ok {
				// Unexpected shape: keep the raw value rather than lose the field.
				fields = append(fields, flattenValue(key, meta.Value)...)
				continue
			}
			first, _ := parts["first"].(string)
			middle, _ := parts["middle"].(string)
			last, _ := parts["last"].(string)
			fields = append(fields, expandName(key, first, middle, last)...)
		case "file":
			if value, ok := meta.Value.(string); ok && value != "" {
				fields = append(fields, uploadField(key, value))
			}
		default:
			fields = append(fields, flattenValue(key, meta.Value)...)
		}
	}

	return entry, fields, nil
}

func (a *formidableAdapter) DeleteNative(ctx context.Context, raw RawSubmission) error {
	log := a.log.Function("DeleteNative")

	if raw.NativeEntryID == "" {
		return nil
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_frm_item_metas WHERE item_id = ?", raw.NativeEntryID); err != nil {
		return log.Err("failed to delete item metas", err, "itemId", raw.NativeEntryID)
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_frm_items WHERE id = ?", raw.NativeEntryID); err != nil {
		return log.Err("failed to delete item", err, "itemId", raw.NativeEntryID)
	}

	return nil
}
