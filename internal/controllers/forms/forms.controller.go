package formsController

import (
	"context"
	"formsentry/internal/adapters"
	"formsentry/internal/database"
	"formsentry/internal/logger"
	"formsentry/internal/repositories"
	"time"

	. "formsentry/internal/models"
)

// FormsController serves the form listings the test harness uses to pick
// targets. Listings are cached; the cleanup coordinator flushes the cache
// after every capture so a finished test never sees stale state.
type FormsController struct {
	entryRepo repositories.EntryRepository
	registry  *adapters.Registry
	db        database.DB
	log       logger.Logger
}

type FormListing struct {
	Engines []FormType                 `json:"engines"`
	Forms   []repositories.FormSummary `json:"forms"`
}

var formsCacheExpiry = 10 * time.Minute

const formsCacheKey = "forms:list"

func New(entryRepo repositories.EntryRepository, registry *adapters.Registry, db database.DB) *FormsController {
	return &FormsController{
		entryRepo: entryRepo,
		registry:  registry,
		db:        db,
		log:       logger.New("FormsController"),
	}
}

func (fc *FormsController) List(ctx context.Context) (*FormListing, error) {
	log := fc.log.Function("List")

	item := database.CacheItem[FormListing]{
		Cache:  fc.db.Cache.Forms,
		Key:    formsCacheKey,
		Expiry: &formsCacheExpiry,
	}

	if fc.db.Cache.Forms != nil {
		if cached, ok, err := database.GetValue(ctx, item); err == nil && ok {
			return &cached, nil
		}
	}

	forms, err := fc.entryRepo.ListForms(ctx)
	if err != nil {
		return nil, log.Err("failed to list forms", err)
	}

	listing := &FormListing{
		Engines: fc.registry.Types(),
		Forms:   forms,
	}

	if fc.db.Cache.Forms != nil {
		item.Value = *listing
		if err := database.SetValue(ctx, item); err != nil {
			log.Er("failed to cache form listing", err)
		}
	}

	return listing, nil
}
