package middleware

import (
	"errors"
	"formsentry/config"
	"formsentry/internal/database"
	"formsentry/internal/logger"
	"formsentry/internal/services"
	"formsentry/internal/utils"
	"strings"

	sessionController "formsentry/internal/controllers/session"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	. "formsentry/internal/models"
)

// testCookiePrefix scopes the correlation cookie to one test id, so two
// concurrent tests driving the same browser never clobber each other.
const testCookiePrefix = "formsentry_test_"

const localsTestContext = "testContext"

type Middleware struct {
	identityService   *services.IdentityService
	tokenService      *services.TokenService
	sessionController *sessionController.SessionController
	db                database.DB
	config            config.Config
	log               logger.Logger
}

func New(
	db database.DB,
	identityService *services.IdentityService,
	tokenService *services.TokenService,
	sessionController *sessionController.SessionController,
	config config.Config,
) Middleware {
	return Middleware{
		identityService:   identityService,
		tokenService:      tokenService,
		sessionController: sessionController,
		db:                db,
		config:            config,
		log:               logger.New("middleware"),
	}
}

// TestContext resolves the per-request test context and stores it in
// locals. Requests that do not come from the authorized bot get an
// inactive context and pass through untouched.
func (m *Middleware) TestContext(isSubmission bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		clientIP := utils.ClientIP(c.Get("X-Forwarded-For"), c.Get("X-Real-IP"), c.IP())

		if !m.identityService.IsTestRequest(ctx, clientIP) {
			c.Locals(localsTestContext, &TestContext{VisitorIdentity: clientIP})
			return c.Next()
		}

		req := sessionController.ResolveRequest{
			TestIDParam:         c.Query("test_id"),
			RefererURL:          c.Get(fiber.HeaderReferer),
			VisitorIdentity:     clientIP,
			TargetKey:           c.Query("target"),
			IsSubmission:        isSubmission,
			DisableEmailReceipt: c.Query("disable_email_receipt") != "",
			DisableWebhooks:     c.Query("disable_webhooks") != "",
		}

		if isSubmission {
			req.CookieTestID = testIDFromCookies(c)
		}

		tc, err := m.sessionController.Resolve(ctx, req)
		if err != nil {
			m.log.Function("TestContext").Er("failed to resolve test context", err)
			tc = &TestContext{VisitorIdentity: clientIP}
		}
		tc.Recognized = true

		if tc.Active() && !isSubmission {
			c.Cookie(&fiber.Cookie{
				Name:     testCookiePrefix + tc.TestID,
				Value:    tc.TestID,
				MaxAge:   int(m.config.SessionTTL().Seconds()),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		c.Locals(localsTestContext, tc)
		return c.Next()
	}
}

// GetTestContext pulls the resolved context back out of locals. The
// inactive context is the fallback so handlers never see a nil.
func GetTestContext(c *fiber.Ctx) *TestContext {
	if tc, ok := c.Locals(localsTestContext).(*TestContext); ok && tc != nil {
		return tc
	}
	return &TestContext{}
}

// RequireToken guards the REST surface with the control-plane signed
// token from the Authorization header.
func (m *Middleware) RequireToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := m.log.Function("RequireToken")

		token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "missing authorization token"})
		}

		claims, err := m.tokenService.Validate(c.UserContext(), token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTokenExpired):
				return c.Status(fiber.StatusUnauthorized).
					JSON(fiber.Map{"message": "token expired"})
			case errors.Is(err, services.ErrTokenMalformed),
				errors.Is(err, services.ErrTokenSignature),
				errors.Is(err, services.ErrTokenOrigin):
				return c.Status(fiber.StatusUnauthorized).
					JSON(fiber.Map{"message": "invalid token"})
			default:
				log.Er("token validation failed", err)
				return c.Status(fiber.StatusServiceUnavailable).
					JSON(fiber.Map{"message": "token validation unavailable"})
			}
		}

		c.Locals("tokenSubject", claims.Subject)
		return c.Next()
	}
}

// RequireAdminKey guards operator endpoints with the pre-shared admin
// key, compared against its bcrypt hash from config.
func (m *Middleware) RequireAdminKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.config.AdminKeyHash == "" {
			return c.Status(fiber.StatusForbidden).
				JSON(fiber.Map{"message": "admin access is not configured"})
		}

		key := c.Get("X-Admin-Key")
		if key == "" {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "missing admin key"})
		}

		if err := bcrypt.CompareHashAndPassword([]byte(m.config.AdminKeyHash), []byte(key)); err != nil {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"message": "invalid admin key"})
		}

		return c.Next()
	}
}

func testIDFromCookies(c *fiber.Ctx) string {
	found := ""
	c.Request().Header.VisitAllCookie(func(key, value []byte) {
		if found != "" {
			return
		}
		if strings.HasPrefix(string(key), testCookiePrefix) && utils.ValidTestID(string(value)) {
			found = string(value)
		}
	})
	return found
}
