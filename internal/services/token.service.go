package services

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"formsentry/config"
	"formsentry/internal/database"
	"formsentry/internal/logger"
	"strings"
	"time"
)

// TokenService validates the signed authorization tokens carried by
// inbound REST calls. The signing key is published by the control plane
// and cached for 12 hours. Validation fails closed on signature mismatch,
// origin mismatch and expiry.
type TokenService struct {
	db     database.DB
	client *ControlPlaneClient
	config config.Config
	log    logger.Logger
}

type TokenClaims struct {
	Origin    string `json:"origin"`
	Subject   string `json:"sub,omitempty"`
	ExpiresAt int64  `json:"exp"`
}

var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenSignature = errors.New("token signature mismatch")
	ErrTokenOrigin    = errors.New("token origin mismatch")
	ErrTokenExpired   = errors.New("token expired")
)

const publicKeyCacheKey = "public_key"

func NewTokenService(db database.DB, client *ControlPlaneClient, config config.Config) *TokenService {
	return &TokenService{
		db:     db,
		client: client,
		config: config,
		log:    logger.New("TokenService"),
	}
}

// Validate checks a `claims.signature` token (both parts base64url) and
// returns its claims.
func (s *TokenService) Validate(ctx context.Context, token string) (*TokenClaims, error) {
	log := s.log.Function("Validate")

	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return nil, ErrTokenMalformed
	}

	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrTokenMalformed
	}
	signature, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrTokenMalformed
	}

	publicKey, err := s.signingKey(ctx)
	if err != nil {
		return nil, log.Err("failed to resolve signing key", err)
	}

	digest := sha256.Sum256(claimsJSON)
	if err := rsa.VerifyPKCS1v15(publicKey, crypto.SHA256, digest[:], signature); err != nil {
		return nil, ErrTokenSignature
	}

	var claims TokenClaims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, ErrTokenMalformed
	}

	if claims.Origin != s.config.SiteURL {
		return nil, ErrTokenOrigin
	}

	if claims.ExpiresAt == 0 || time.Now().Unix() > claims.ExpiresAt {
		return nil, ErrTokenExpired
	}

	return &claims, nil
}

func (s *TokenService) signingKey(ctx context.Context) (*rsa.PublicKey, error) {
	item := database.CacheItem[string]{
		Cache:  s.db.Cache.Identity,
		Key:    publicKeyCacheKey,
		Expiry: &identityCacheExpiry,
	}

	if s.db.Cache.Identity != nil {
		if cached, ok, err := database.GetValue(ctx, item); err == nil && ok {
			return parsePublicKey(cached)
		}
	}

	pemKey, err := s.client.FetchPublicKey(ctx)
	if err != nil {
		return nil, err
	}

	key, err := parsePublicKey(pemKey)
	if err != nil {
		return nil, err
	}

	if s.db.Cache.Identity != nil {
		item.Value = pemKey
		if err := database.SetValue(ctx, item); err != nil {
			s.log.Function("signingKey").Er("failed to cache public key", err)
		}
	}

	return key, nil
}

func parsePublicKey(pemKey string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return nil, errors.New("no PEM block in public key")
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}

	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return key, nil
}
