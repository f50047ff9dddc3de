package adapters

import (
	"testing"
	"time"

	. "formsentry/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNewEntryUID(t *testing.T) {
	raw := RawSubmission{FormType: FormTypeCF7, FormID: "12", SourceURL: "https://example.com/contact"}

	t.Run("active context uses the test id", func(t *testing.T) {
		tc := &TestContext{TestID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"}
		entry := newEntry(tc, raw)
		assert.Equal(t, tc.TestID, entry.UID)
		assert.Equal(t, EntryStatusCaptured, entry.Status)
	})

	t.Run("inactive context synthesizes a per-form-per-day uid", func(t *testing.T) {
		entry := newEntry(&TestContext{}, raw)
		expected := "12-" + time.Now().UTC().Format("2006-01-02")
		assert.Equal(t, expected, entry.UID)
		assert.Equal(t, FormTypeCF7, entry.FormType)
	})
}

func TestSlugKey(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		expected string
	}{
		{"simple", "Email", "email"},
		{"spaces and case", "Your Name", "your_name"},
		{"punctuation stripped", "Phone # (mobile)!", "phone_mobile"},
		{"collapsed separators", "a - _ b", "a_b"},
		{"leading and trailing", "  -field-  ", "field"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, slugKey(tt.label))
		})
	}
}

func TestFlattenValue(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    any
		expected []CapturedField
	}{
		{
			name:     "string scalar",
			key:      "email",
			value:    "ada@example.com",
			expected: []CapturedField{{MetaKey: "email", MetaValue: "ada@example.com"}},
		},
		{
			name:     "nil becomes empty row",
			key:      "comments",
			value:    nil,
			expected: []CapturedField{{MetaKey: "comments", MetaValue: ""}},
		},
		{
			name:     "bool",
			key:      "subscribed",
			value:    true,
			expected: []CapturedField{{MetaKey: "subscribed", MetaValue: "true"}},
		},
		{
			name:     "integral float stays integral",
			key:      "quantity",
			value:    float64(3),
			expected: []CapturedField{{MetaKey: "quantity", MetaValue: "3"}},
		},
		{
			name:     "fractional float",
			key:      "price",
			value:    19.5,
			expected: []CapturedField{{MetaKey: "price", MetaValue: "19.5"}},
		},
		{
			name:  "slice expands with one-based suffixes",
			key:   "colors",
			value: []any{"red", "blue"},
			expected: []CapturedField{
				{MetaKey: "colors_1", MetaValue: "red"},
				{MetaKey: "colors_2", MetaValue: "blue"},
			},
		},
		{
			name:  "string slice",
			key:   "tags",
			value: []string{"a", "b"},
			expected: []CapturedField{
				{MetaKey: "tags_1", MetaValue: "a"},
				{MetaKey: "tags_2", MetaValue: "b"},
			},
		},
		{
			name:  "map expands per sub-key in sorted order",
			key:   "address",
			value: map[string]any{"zip": "12345", "city": "Springfield"},
			expected: []CapturedField{
				{MetaKey: "address_city", MetaValue: "Springfield"},
				{MetaKey: "address_zip", MetaValue: "12345"},
			},
		},
		{
			name:  "nested map inside slice",
			key:   "items",
			value: []any{map[string]any{"sku": "X1"}},
			expected: []CapturedField{
				{MetaKey: "items_1_sku", MetaValue: "X1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, flattenValue(tt.key, tt.value))
		})
	}
}

func TestExpandName(t *testing.T) {
	t.Run("all segments", func(t *testing.T) {
		fields := expandName("name", "Ada", "King", "Lovelace")
		assert.Equal(t, []CapturedField{
			{MetaKey: "name_first", MetaValue: "Ada"},
			{MetaKey: "name_middle", MetaValue: "King"},
			{MetaKey: "name_last", MetaValue: "Lovelace"},
		}, fields)
	})

	t.Run("empty middle is skipped, not emitted blank", func(t *testing.T) {
		fields := expandName("name", "Ada", "", "Lovelace")
		assert.Equal(t, []CapturedField{
			{MetaKey: "name_first", MetaValue: "Ada"},
			{MetaKey: "name_last", MetaValue: "Lovelace"},
		}, fields)
	})

	t.Run("all empty yields nothing", func(t *testing.T) {
		assert.Empty(t, expandName("name", "", "", ""))
	})
}

func TestUploadField(t *testing.T) {
	field := uploadField("resume", "/var/uploads/2026/08/cv-final.pdf")
	assert.Equal(t, "resume", field.MetaKey)
	assert.Equal(t, "cv-final.pdf", field.MetaValue)
}

func TestDropSet(t *testing.T) {
	drops := newDropSet("_wpnonce", "_wpcf7*")

	assert.True(t, drops.contains("_wpnonce"))
	assert.True(t, drops.contains("_wpcf7"))
	assert.True(t, drops.contains("_wpcf7_unit_tag"))
	assert.False(t, drops.contains("message"))
	assert.False(t, drops.contains("wpcf7"))
}
