package adapters

import (
	"context"
	"encoding/json"
	"formsentry/internal/database"
	"sort"

	. "formsentry/internal/models"
)

// Contact Form 7 posts a flat key/value map; persistence comes from the
// Flamingo companion plugin, which stores each inbound message as a post
// with meta rows.
type contactForm7Adapter struct {
	baseAdapter
	drops dropSet
}

func NewContactForm7(db database.DB) Adapter {
	return &contactForm7Adapter{
		baseAdapter: newBase(Definition{
			Name:         "ContactForm7",
			FormType:     FormTypeCF7,
			NativeTables: []string{"wp_posts", "wp_postmeta"},
			AntispamChecks: []string{
				"recaptcha", "akismet", "disallowed_list",
			},
		}, db),
		drops: newDropSet(
			"_wpcf7*",
			"_wpnonce",
			"g-recaptcha-response",
			"h-captcha-response",
		),
	}
}

type contactForm7Payload struct {
	PostedData    map[string]any    `json:"posted_data"`
	UploadedFiles map[string]string `json:"uploaded_files"`
}

func (a *contactForm7Adapter) Capture(tc *TestContext, raw RawSubmission) (*CapturedEntry, []CapturedField, error) {
	log := a.log.Function("Capture")

	var payload contactForm7Payload
	if err := json.Unmarshal(raw.Fields, &payload); err != nil {
		return nil, nil, log.Err("failed to decode payload", err, "formId", raw.FormID)
	}

	entry := newEntry(tc, raw)
	var fields []CapturedField

	for _, key := range sortedKeys(payload.PostedData) {
		if a.drops.contains(key) {
			continue
		}
		if _, uploaded := payload.UploadedFiles[key]; uploaded {
			continue
		}
		fields = append(fields, flattenValue(slugKey(key), payload.PostedData[key])...)
	}

	uploadKeys := make([]string, 0, len(payload.UploadedFiles))
	for key := range payload.UploadedFiles {
		uploadKeys = append(uploadKeys, key)
	}
	sort.Strings(uploadKeys)
	for _, key := range uploadKeys {
		if payload.UploadedFiles[key] == "" {
			continue
		}
		fields = append(fields, uploadField(slugKey(key), payload.UploadedFiles[key]))
	}

	return entry, fields, nil
}

func (a *contactForm7Adapter) DeleteNative(ctx context.Context, raw RawSubmission) error {
	log := a.log.Function("DeleteNative")

	if raw.NativeEntryID == "" {
		return nil
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_postmeta WHERE post_id = ?", raw.NativeEntryID); err != nil {
		return log.Err("failed to delete inbound meta", err, "postId", raw.NativeEntryID)
	}

	if err := a.execDelete(ctx,
		"DELETE FROM wp_posts WHERE id = ? AND post_type = 'flamingo_inbound'",
		raw.NativeEntryID); err != nil {
		return log.Err("failed to delete inbound post", err, "postId", raw.NativeEntryID)
	}

	return nil
}
