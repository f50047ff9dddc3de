package services

import (
	"context"
	"formsentry/config"
	"formsentry/internal/database"
	"formsentry/internal/logger"
	"time"
)

// IdentityService decides whether a request originates from the authorized
// test runner by comparing the requester's address against the bot address
// published by the control plane.
type IdentityService struct {
	db      database.DB
	client  *ControlPlaneClient
	config  config.Config
	metrics *MetricsService
	log     logger.Logger
}

var identityCacheExpiry = 12 * time.Hour

const containerIPCacheKey = "container_ip"

func NewIdentityService(
	db database.DB,
	client *ControlPlaneClient,
	metrics *MetricsService,
	config config.Config,
) *IdentityService {
	return &IdentityService{
		db:      db,
		client:  client,
		config:  config,
		metrics: metrics,
		log:     logger.New("IdentityService"),
	}
}

// IsTestRequest reports whether clientIP is the authorized bot. On a
// control-plane fetch failure the resolver fails closed unless the
// operator enabled SkipIPCheck, which accepts the request without bot-IP
// confirmation.
func (s *IdentityService) IsTestRequest(ctx context.Context, clientIP string) bool {
	log := s.log.Function("IsTestRequest")

	if clientIP == "" {
		return false
	}

	botIP, err := s.authorizedBotIP(ctx)
	if err != nil {
		log.Er("failed to resolve authorized bot address", err)
		if s.metrics != nil {
			s.metrics.IdentityFetchFailure()
		}
		return s.config.SkipIPCheck
	}

	return clientIP == botIP
}

func (s *IdentityService) authorizedBotIP(ctx context.Context) (string, error) {
	log := s.log.Function("authorizedBotIP")

	item := database.CacheItem[string]{
		Cache:  s.db.Cache.Identity,
		Key:    containerIPCacheKey,
		Expiry: &identityCacheExpiry,
	}

	if s.db.Cache.Identity != nil {
		if cached, ok, err := database.GetValue(ctx, item); err == nil && ok {
			return cached, nil
		}
	}

	botIP, err := s.client.FetchContainerIP(ctx)
	if err != nil {
		return "", err
	}

	if s.db.Cache.Identity != nil {
		item.Value = botIP
		if err := database.SetValue(ctx, item); err != nil {
			log.Er("failed to cache bot address", err)
		}
	}

	return botIP, nil
}
