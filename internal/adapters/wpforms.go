package adapters

import (
	"context"
	"encoding/json"
	"formsentry/internal/database"
	"sort"
	"strconv"

	. "formsentry/internal/models"
)

// WPForms delivers submissions as a map of field objects carrying their
// own labels and types; name fields embed first/middle/last sub-values.
type wpFormsAdapter struct {
	baseAdapter
}

func NewWPForms(db database.DB) Adapter {
	return &wpFormsAdapter{
		baseAdapter: newBase(Definition{
			Name:         "WPForms",
			FormType:     FormTypeWPForms,
			NativeTables: []string{"wp_wpforms_entries", "wp_wpforms_entry_fields"},
			AntispamChecks: []string{
				"recaptcha", "hcaptcha", "turnstile", "token", "honeypot",
			},
		}, db),
	}
}

type wpFormsField struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Value  any    `json:"value"`
	First  string `json:"first"`
	Middle string `json:"middle"`
	Last   string `json:"last"`
}

type wpFormsPayload struct {
	Fields map[string]wpFormsField `json:"fields"`
}

func (a *wpFormsAdapter) Capture(tc *TestContext, raw RawSubmission) (*CapturedEntry, []CapturedField, error) {
	log := a.log.Function("Capture")

	var payload wpFormsPayload
	if err := json.Unmarshal(raw.Fields, &payload); err != nil {
		return nil, nil, log.Err("failed to decode payload", err, "formId", raw.FormID)
	}

	entry := newEntry(tc, raw)
	var fields []CapturedField

	for _, id := range sortedFieldIDs(payload.Fields) {
		field := payload.Fields[id]

		key := slugKey(field.Name)
		if key == "" {
			key = "field_" + id
		}

		switch field.Type {
		case "captcha":
			continue
		case "name":
			fields = append(fields, expandName(key, field.First, field.Middle, field.Last)...)
		case "file-upload":
			if value, ok := field.Value.(string); ok && value != "" {
				fields = append(fields, uploadField(key, value))
			}
		default:
			fields = append(fields, flattenValue(key, field.Value)...)
		}
	}

	return entry, fields, nil
}

// sortedFieldIDs orders numeric ids numerically so field order matches
// the form, falling back to string order for non-numeric keys.
func sortedFieldIDs(fields map[string]wpFormsField) []string {
	ids := make([]string, 0, len(fields))
	for id := range fields {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return ids[i] < ids[j]
	})
	return ids
}

func (a *wpFormsAdapter) DeleteNative(ctx context.Context, raw RawSubmission) error {
	log := a.log.Function("DeleteNative")

	if raw.NativeEntryID == "" {
		return nil
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_wpforms_entry_fields WHERE entry_id = ?", raw.NativeEntryID); err != nil {
		return log.Err("failed to delete entry fields", err, "entryId", raw.NativeEntryID)
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_wpforms_entries WHERE entry_id = ?", raw.NativeEntryID); err != nil {
		return log.Err("failed to delete entry", err, "entryId", raw.NativeEntryID)
	}

	return nil
}
