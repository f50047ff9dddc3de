package sessionController

import (
	"context"
	"formsentry/config"
	"formsentry/internal/events"
	"formsentry/internal/logger"
	"formsentry/internal/repositories"
	"formsentry/internal/services"
	"formsentry/internal/utils"
	"net/url"

	. "formsentry/internal/models"
)

// SessionController builds the per-request TestContext: it decides whether
// the request belongs to a test run, threads the test id across the page
// load / submission boundary, and resolves where notification email must
// be rerouted.
type SessionController struct {
	sessionRepo  repositories.SessionRepository
	settingsRepo repositories.SettingsRepository
	metrics      *services.MetricsService
	eventBus     *events.EventBus
	config       config.Config
	log          logger.Logger
}

func New(
	sessionRepo repositories.SessionRepository,
	settingsRepo repositories.SettingsRepository,
	metrics *services.MetricsService,
	eventBus *events.EventBus,
	config config.Config,
) *SessionController {
	return &SessionController{
		sessionRepo:  sessionRepo,
		settingsRepo: settingsRepo,
		metrics:      metrics,
		eventBus:     eventBus,
		config:       config,
		log:          logger.New("SessionController"),
	}
}

// ResolveRequest carries everything the resolver may need from the HTTP
// layer; the controller itself never touches the request object.
type ResolveRequest struct {
	TestIDParam         string
	RefererURL          string
	CookieTestID        string
	VisitorIdentity     string
	TargetKey           string
	IsSubmission        bool
	DisableEmailReceipt bool
	DisableWebhooks     bool
}

// Resolve computes the TestContext for one request. A nil-TestID context
// means the request is not part of a test; the pipeline then leaves the
// site's normal behavior untouched.
func (sc *SessionController) Resolve(ctx context.Context, req ResolveRequest) (*TestContext, error) {
	log := sc.log.Function("Resolve")

	testID := ""
	if utils.ValidTestID(req.TestIDParam) {
		testID = req.TestIDParam
	}

	targetKey := req.TargetKey

	// The async submission call carries no test parameter of its own; the
	// id has to be recovered from the page that hosted the form, from the
	// correlation cookie, or from the session stored on the original page
	// view. The referer outranks the cookie: with two concurrent tests in
	// one browser, each page names its own test while the cookie jar holds
	// both tests' cookies.
	if testID == "" && req.IsSubmission {
		testID = testIDFromReferer(req.RefererURL)
	}
	if testID == "" && req.IsSubmission && utils.ValidTestID(req.CookieTestID) {
		testID = req.CookieTestID
	}
	if testID == "" && req.IsSubmission && req.VisitorIdentity != "" {
		session, err := sc.sessionRepo.GetByVisitor(ctx, req.VisitorIdentity)
		if err != nil {
			log.Er("session lookup failed, treating request as untested", err,
				"visitorIdentity", req.VisitorIdentity)
		} else if session != nil {
			testID = session.TestID
			if targetKey == "" {
				targetKey = session.TargetKey
			}
		}
	}

	if testID == "" {
		return &TestContext{VisitorIdentity: req.VisitorIdentity}, nil
	}

	if !req.IsSubmission {
		sc.ensureSession(ctx, req.VisitorIdentity, testID, targetKey)
	} else if targetKey == "" {
		if session, err := sc.sessionRepo.Get(ctx, req.VisitorIdentity, testID); err == nil && session != nil {
			targetKey = session.TargetKey
		}
	}

	tc := &TestContext{
		TestID:          testID,
		VisitorIdentity: req.VisitorIdentity,
		TargetKey:       targetKey,
	}

	tc.RecipientOverride = sc.resolveRecipient(ctx, testID, targetKey)
	sc.resolveSuppression(ctx, req, tc)

	return tc, nil
}

// ensureSession stores the correlation record on the first test-tagged
// page view only; later views of the same pair leave the stored session
// untouched.
func (sc *SessionController) ensureSession(ctx context.Context, visitorIdentity, testID, targetKey string) {
	log := sc.log.Function("ensureSession")

	if visitorIdentity == "" {
		return
	}

	existing, err := sc.sessionRepo.Get(ctx, visitorIdentity, testID)
	if err == nil && existing != nil {
		return
	}

	if err := sc.sessionRepo.Put(ctx, visitorIdentity, testID, targetKey); err != nil {
		// Best effort: capture still works via referrer recovery.
		log.Er("failed to store session", err, "testID", testID)
		return
	}

	if sc.metrics != nil {
		sc.metrics.SessionCreated()
	}

	if sc.eventBus != nil {
		sc.eventBus.Publish(events.Event{
			Type: events.EventSessionCreated,
			UID:  testID,
		})
	}
}

// resolveRecipient picks the redirect address with a fixed precedence:
// per-form configured destination, then the test mailbox derived from the
// test id, then the operator verification address.
func (sc *SessionController) resolveRecipient(ctx context.Context, testID, targetKey string) string {
	if targetKey != "" {
		configured, ok, err := sc.settingsRepo.Get(ctx, SettingFormRecipientPrefix+targetKey)
		if err == nil && ok && configured != "" {
			return configured
		}
	}

	if sc.config.TestMailDomain != "" {
		return testID + "@" + sc.config.TestMailDomain
	}

	return sc.config.VerifyAddress
}

// resolveSuppression applies the one-way latches. A request that raises a
// latch also persists it, so subsequent runs inherit the suppression until
// an operator toggles it off.
func (sc *SessionController) resolveSuppression(ctx context.Context, req ResolveRequest, tc *TestContext) {
	log := sc.log.Function("resolveSuppression")

	tc.SuppressReceipt = sc.settingsRepo.IsEnabled(ctx, SettingDisableEmailReceipt)
	tc.SuppressWebhooks = sc.settingsRepo.IsEnabled(ctx, SettingDisableWebhooks)

	if req.DisableEmailReceipt && !tc.SuppressReceipt {
		tc.SuppressReceipt = true
		if err := sc.settingsRepo.Set(ctx, SettingDisableEmailReceipt, "1"); err != nil {
			log.Er("failed to persist receipt suppression", err)
		}
	}

	if req.DisableWebhooks && !tc.SuppressWebhooks {
		tc.SuppressWebhooks = true
		if err := sc.settingsRepo.Set(ctx, SettingDisableWebhooks, "1"); err != nil {
			log.Er("failed to persist webhook suppression", err)
		}
	}
}

func testIDFromReferer(referer string) string {
	if referer == "" {
		return ""
	}

	parsed, err := url.Parse(referer)
	if err != nil {
		return ""
	}

	candidate := parsed.Query().Get("test_id")
	if !utils.ValidTestID(candidate) {
		return ""
	}
	return candidate
}
