package captureController

import (
	"context"
	"formsentry/internal/adapters"
	"formsentry/internal/events"
	"formsentry/internal/logger"
	"formsentry/internal/repositories"
	"formsentry/internal/services"

	. "formsentry/internal/models"
)

// CaptureController runs the submission-complete pipeline: resolve the
// engine's adapter, normalize the raw submission into canonical rows,
// remove the engine's own copy, and tear down the correlation state.
type CaptureController struct {
	registry           *adapters.Registry
	entryRepo          repositories.EntryRepository
	cleanupService     *services.CleanupService
	transactionService *services.TransactionService
	metrics            *services.MetricsService
	eventBus           *events.EventBus
	log                logger.Logger
}

func New(
	registry *adapters.Registry,
	entryRepo repositories.EntryRepository,
	cleanupService *services.CleanupService,
	transactionService *services.TransactionService,
	metrics *services.MetricsService,
	eventBus *events.EventBus,
) *CaptureController {
	return &CaptureController{
		registry:           registry,
		entryRepo:          entryRepo,
		cleanupService:     cleanupService,
		transactionService: transactionService,
		metrics:            metrics,
		eventBus:           eventBus,
		log:                logger.New("CaptureController"),
	}
}

// SubmissionResult is handed back to the engine-side shim so it can apply
// the rewritten recipients and skip the disabled checks.
type SubmissionResult struct {
	Captured         bool          `json:"captured"`
	UID              string        `json:"uid,omitempty"`
	EntryID          string        `json:"entryId,omitempty"`
	Email            *EmailMessage `json:"email,omitempty"`
	DisabledChecks   []string      `json:"disabledChecks,omitempty"`
	SuppressWebhooks bool          `json:"suppressWebhooks"`
}

// HandleSubmission processes one submission-complete event. The engine's
// native side effects have already happened by the time this runs; the
// canonical capture is written first, then the native rows are removed.
// The two steps are not atomic across systems: a crash in between leaves
// the native copy behind, which the next test run's deletion sweeps up.
//
// The identity gate bounds the whole pipeline: a submission from anyone
// but the recognized bot passes through untouched. Its engine-native row
// stays where the engine put it and nothing is captured.
func (cc *CaptureController) HandleSubmission(
	ctx context.Context,
	tc *TestContext,
	raw RawSubmission,
) (*SubmissionResult, error) {
	log := cc.log.Function("HandleSubmission")

	adapter, ok := cc.registry.Resolve(raw.FormType)
	if !ok {
		return nil, log.Error("no adapter for form type", "formType", raw.FormType)
	}

	if !tc.FromBot() {
		return &SubmissionResult{}, nil
	}

	entry, fields, err := adapter.Capture(tc, raw)
	if err != nil {
		if cc.metrics != nil {
			cc.metrics.CaptureFailure(string(raw.FormType))
		}
		return nil, log.Err("capture failed", err, "formType", raw.FormType, "formId", raw.FormID)
	}

	err = cc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		return cc.entryRepo.CreateWithFields(txCtx, entry, fields)
	})
	if err != nil {
		if cc.metrics != nil {
			cc.metrics.CaptureFailure(string(raw.FormType))
		}
		return nil, log.Err("failed to persist captured entry", err, "uid", entry.UID)
	}

	// Native deletion and cleanup are best effort past this point; the
	// canonical record exists and the caller gets a success either way.
	if err := adapter.DeleteNative(ctx, raw); err != nil {
		log.Er("failed to delete native submission", err,
			"formType", raw.FormType, "nativeEntryId", raw.NativeEntryID)
	}

	if tc.Active() {
		if err := cc.cleanupService.Complete(ctx, tc.VisitorIdentity, tc.TestID); err != nil {
			log.Er("cleanup failed", err, "testID", tc.TestID)
		}
	}

	if cc.metrics != nil {
		cc.metrics.Capture(string(raw.FormType))
	}

	if cc.eventBus != nil {
		cc.eventBus.Publish(events.Event{
			Type:     events.EventCaptureComplete,
			UID:      entry.UID,
			FormID:   entry.FormID,
			FormType: entry.FormType,
		})
	}

	result := &SubmissionResult{
		Captured:         true,
		UID:              entry.UID,
		EntryID:          entry.ID,
		DisabledChecks:   adapter.SuppressAntispam(tc),
		SuppressWebhooks: tc.Active() && tc.SuppressWebhooks,
	}

	if raw.Email != nil {
		rewritten := adapter.RedirectEmail(tc, *raw.Email)
		result.Email = &rewritten
	}

	return result, nil
}
