package repositories

import (
	"context"
	"errors"
	"formsentry/internal/database"
	"formsentry/internal/logger"
	. "formsentry/internal/models"
	"formsentry/internal/services"

	"gorm.io/gorm"
)

type EntryRepository interface {
	CreateWithFields(ctx context.Context, entry *CapturedEntry, fields []CapturedField) error
	GetByUID(ctx context.Context, uid string) (*CapturedEntry, []CapturedField, error)
	List(ctx context.Context, offset, limit int) ([]*CapturedEntry, error)
	ListForms(ctx context.Context) ([]FormSummary, error)
	DeleteByUID(ctx context.Context, uid string) error
}

// FormSummary is one form known to the capture pipeline.
type FormSummary struct {
	FormID       string   `json:"formId"`
	FormType     FormType `json:"formType"`
	CaptureCount int64    `json:"captureCount"`
}

type entryRepository struct {
	db  database.DB
	log logger.Logger
}

func NewEntry(db database.DB) EntryRepository {
	return &entryRepository{
		db:  db,
		log: logger.New("entryRepository"),
	}
}

func (r *entryRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

// CreateWithFields writes the entry row before any field rows, so a field
// can never exist without its parent. The invariant is enforced by write
// order, not a foreign key.
func (r *entryRepository) CreateWithFields(
	ctx context.Context,
	entry *CapturedEntry,
	fields []CapturedField,
) error {
	log := r.log.Function("CreateWithFields")

	if entry.UID == "" {
		return log.Error("entry uid is empty", "formId", entry.FormID)
	}

	db := r.getDB(ctx)

	if err := db.Create(entry).Error; err != nil {
		return log.Err("failed to create captured entry", err,
			"uid", entry.UID, "formId", entry.FormID)
	}

	if len(fields) == 0 {
		return nil
	}

	for i := range fields {
		fields[i].EntryID = entry.ID
		fields[i].UID = entry.UID
		if fields[i].FormID == "" {
			fields[i].FormID = entry.FormID
		}
	}

	if err := db.CreateInBatches(fields, 100).Error; err != nil {
		return log.Err("failed to create captured fields", err,
			"uid", entry.UID, "fieldCount", len(fields))
	}

	return nil
}

func (r *entryRepository) GetByUID(ctx context.Context, uid string) (*CapturedEntry, []CapturedField, error) {
	log := r.log.Function("GetByUID")

	var entry CapturedEntry
	err := r.getDB(ctx).
		Where("uid = ?", uid).
		Order("created_at DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, log.Err("failed to get entry by uid", err, "uid", uid)
	}

	var fields []CapturedField
	if err := r.getDB(ctx).Where("entry_id = ?", entry.ID).Find(&fields).Error; err != nil {
		return nil, nil, log.Err("failed to get fields for entry", err,
			"uid", uid, "entryId", entry.ID)
	}

	return &entry, fields, nil
}

func (r *entryRepository) List(ctx context.Context, offset, limit int) ([]*CapturedEntry, error) {
	log := r.log.Function("List")

	var entries []*CapturedEntry
	query := r.getDB(ctx).Order("created_at DESC")
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, log.Err("failed to list entries", err, "offset", offset, "limit", limit)
	}

	return entries, nil
}

func (r *entryRepository) ListForms(ctx context.Context) ([]FormSummary, error) {
	log := r.log.Function("ListForms")

	var forms []FormSummary
	err := r.getDB(ctx).
		Model(&CapturedEntry{}).
		Select("form_id, form_type, COUNT(*) AS capture_count").
		Group("form_id, form_type").
		Order("form_type, form_id").
		Scan(&forms).Error
	if err != nil {
		return nil, log.Err("failed to list forms", err)
	}

	return forms, nil
}

func (r *entryRepository) DeleteByUID(ctx context.Context, uid string) error {
	log := r.log.Function("DeleteByUID")

	db := r.getDB(ctx)

	if err := db.Where("uid = ?", uid).Delete(&CapturedField{}).Error; err != nil {
		return log.Err("failed to delete fields by uid", err, "uid", uid)
	}

	if err := db.Where("uid = ?", uid).Delete(&CapturedEntry{}).Error; err != nil {
		return log.Err("failed to delete entry by uid", err, "uid", uid)
	}

	return nil
}
