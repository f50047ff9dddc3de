package adapters

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"formsentry/internal/utils"

	. "formsentry/internal/models"
)

// Shared normalization helpers. Capture must be total: every raw field
// either becomes one or more canonical fields or is explicitly classified
// as dropped by the adapter's drop set.

// newEntry builds the canonical entry for a submission. When the test id
// could not be resolved, a per-form-per-day uid is synthesized so
// mis-tagged captures remain distinguishable.
func newEntry(tc *TestContext, raw RawSubmission) *CapturedEntry {
	uid := ""
	if tc.Active() {
		uid = tc.TestID
	}
	if uid == "" {
		uid = utils.SynthesizeTestID(raw.FormID, time.Now())
	}

	now := time.Now().UTC()
	return &CapturedEntry{
		UID:         uid,
		FormID:      raw.FormID,
		FormType:    raw.FormType,
		SourceURL:   raw.SourceURL,
		Status:      EntryStatusCaptured,
		DateCreated: now,
		DateUpdated: now,
	}
}

// slugKey turns a human label into a stable meta key.
func slugKey(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.':
			b.WriteRune('_')
		}
	}
	slug := strings.Trim(b.String(), "_")
	for strings.Contains(slug, "__") {
		slug = strings.ReplaceAll(slug, "__", "_")
	}
	return slug
}

// flattenValue expands one raw value into canonical fields under key.
// Scalars become a single row; slices expand into suffixed rows; maps
// expand per sub-key. Nested values flatten recursively, so no engine
// shape survives into the canonical record.
func flattenValue(key string, value any) []CapturedField {
	switch v := value.(type) {
	case nil:
		return []CapturedField{{MetaKey: key, MetaValue: ""}}
	case string:
		return []CapturedField{{MetaKey: key, MetaValue: v}}
	case bool:
		return []CapturedField{{MetaKey: key, MetaValue: strconv.FormatBool(v)}}
	case float64:
		return []CapturedField{{MetaKey: key, MetaValue: formatNumber(v)}}
	case []any:
		var out []CapturedField
		for i, item := range v {
			out = append(out, flattenValue(fmt.Sprintf("%s_%d", key, i+1), item)...)
		}
		return out
	case []string:
		var out []CapturedField
		for i, item := range v {
			out = append(out, CapturedField{
				MetaKey:   fmt.Sprintf("%s_%d", key, i+1),
				MetaValue: item,
			})
		}
		return out
	case map[string]any:
		var out []CapturedField
		for _, sub := range sortedKeys(v) {
			out = append(out, flattenValue(key+"_"+slugKey(sub), v[sub])...)
		}
		return out
	default:
		return []CapturedField{{MetaKey: key, MetaValue: fmt.Sprintf("%v", v)}}
	}
}

// expandName expands a composite name into discrete canonical fields with
// deterministic suffixes. Empty segments are skipped, not emitted blank.
func expandName(baseKey, first, middle, last string) []CapturedField {
	var out []CapturedField
	segments := []struct {
		suffix string
		value  string
	}{
		{"_first", first},
		{"_middle", middle},
		{"_last", last},
	}
	for _, seg := range segments {
		if seg.value == "" {
			continue
		}
		out = append(out, CapturedField{MetaKey: baseKey + seg.suffix, MetaValue: seg.value})
	}
	return out
}

// uploadField records a file upload by generated filename only, never by
// content or server path.
func uploadField(key, filePath string) CapturedField {
	return CapturedField{MetaKey: key, MetaValue: path.Base(filePath)}
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// dropSet classifies raw keys that are deliberately not captured, e.g.
// anti-spam tokens and nonces.
type dropSet map[string]struct{}

func newDropSet(keys ...string) dropSet {
	s := make(dropSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s dropSet) contains(key string) bool {
	if _, ok := s[key]; ok {
		return true
	}
	for k := range s {
		if strings.HasSuffix(k, "*") && strings.HasPrefix(key, strings.TrimSuffix(k, "*")) {
			return true
		}
	}
	return false
}
