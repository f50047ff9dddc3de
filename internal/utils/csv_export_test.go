package utils

import (
	"testing"

	. "formsentry/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildEntryCSV(t *testing.T) {
	entry := &CapturedEntry{
		UID:      "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		FormID:   "3",
		FormType: FormTypeGravityForms,
	}
	fields := []CapturedField{
		{MetaKey: "name_first", MetaValue: "Ada"},
		{MetaKey: "message", MetaValue: "line one\nline two"},
	}

	data, err := BuildEntryCSV(entry, fields)
	assert.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "uid,form_id,form_type,meta_key,meta_value")
	assert.Contains(t, out, "6ba7b810-9dad-11d1-80b4-00c04fd430c8,3,gravityforms,name_first,Ada")
	// Embedded newline must be quoted, not split into a bare row.
	assert.Contains(t, out, `"line one`)
}

func TestBuildEntryCSVNoFields(t *testing.T) {
	entry := &CapturedEntry{UID: "u", FormID: "1", FormType: FormTypeCF7}

	data, err := BuildEntryCSV(entry, nil)
	assert.NoError(t, err)
	assert.Equal(t, "uid,form_id,form_type,meta_key,meta_value\n", string(data))
}
