package utils

import (
	"bytes"
	"encoding/csv"
	"fmt"

	. "formsentry/internal/models"
)

// BuildEntryCSV renders one captured entry and its fields as CSV for the
// harness export endpoint.
func BuildEntryCSV(entry *CapturedEntry, fields []CapturedField) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"uid", "form_id", "form_type", "meta_key", "meta_value"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, field := range fields {
		row := []string{entry.UID, entry.FormID, string(entry.FormType), field.MetaKey, field.MetaValue}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}
