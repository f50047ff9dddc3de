package repositories

import (
	"context"
	"testing"

	. "formsentry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry(uid, formID string, formType FormType) *CapturedEntry {
	return &CapturedEntry{
		UID:      uid,
		FormID:   formID,
		FormType: formType,
		Status:   EntryStatusCaptured,
	}
}

func TestEntryCreateWithFields(t *testing.T) {
	repo := NewEntry(testDB(t))
	ctx := context.Background()

	entry := sampleEntry(testID, "7", FormTypeGravityForms)
	fields := []CapturedField{
		{MetaKey: "name_first", MetaValue: "Ada"},
		{MetaKey: "email", MetaValue: "ada@example.com"},
	}

	require.NoError(t, repo.CreateWithFields(ctx, entry, fields))

	got, gotFields, err := repo.GetByUID(ctx, testID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "7", got.FormID)
	require.Len(t, gotFields, 2)
	for _, field := range gotFields {
		assert.Equal(t, got.ID, field.EntryID, "fields must point at their parent entry")
		assert.Equal(t, testID, field.UID)
		assert.Equal(t, "7", field.FormID, "blank field form ids inherit the entry's")
	}
}

func TestEntryCreateWithFieldsRequiresUID(t *testing.T) {
	repo := NewEntry(testDB(t))

	err := repo.CreateWithFields(context.Background(), sampleEntry("", "7", FormTypeCF7), nil)
	assert.Error(t, err)
}

func TestEntryGetByUIDMissing(t *testing.T) {
	repo := NewEntry(testDB(t))

	entry, fields, err := repo.GetByUID(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, entry)
	assert.Nil(t, fields)
}

func TestEntryList(t *testing.T) {
	repo := NewEntry(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateWithFields(ctx, sampleEntry("uid-1", "1", FormTypeCF7), nil))
	require.NoError(t, repo.CreateWithFields(ctx, sampleEntry("uid-2", "2", FormTypeCF7), nil))
	require.NoError(t, repo.CreateWithFields(ctx, sampleEntry("uid-3", "3", FormTypeCF7), nil))

	entries, err := repo.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEntryListForms(t *testing.T) {
	repo := NewEntry(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateWithFields(ctx, sampleEntry("uid-1", "7", FormTypeGravityForms), nil))
	require.NoError(t, repo.CreateWithFields(ctx, sampleEntry("uid-2", "7", FormTypeGravityForms), nil))
	require.NoError(t, repo.CreateWithFields(ctx, sampleEntry("uid-3", "3", FormTypeCF7), nil))

	forms, err := repo.ListForms(ctx)
	require.NoError(t, err)
	require.Len(t, forms, 2)

	assert.Equal(t, FormSummary{FormID: "3", FormType: FormTypeCF7, CaptureCount: 1}, forms[0])
	assert.Equal(t, FormSummary{FormID: "7", FormType: FormTypeGravityForms, CaptureCount: 2}, forms[1])
}

func TestEntryDeleteByUID(t *testing.T) {
	repo := NewEntry(testDB(t))
	ctx := context.Background()

	entry := sampleEntry(testID, "7", FormTypeWPForms)
	require.NoError(t, repo.CreateWithFields(ctx, entry, []CapturedField{
		{MetaKey: "email", MetaValue: "ada@example.com"},
	}))

	require.NoError(t, repo.DeleteByUID(ctx, testID))

	got, fields, err := repo.GetByUID(ctx, testID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Nil(t, fields)
}
