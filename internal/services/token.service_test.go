package services

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"formsentry/config"
	"formsentry/internal/database"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenSiteURL = "https://customer.example.com"

func signToken(t *testing.T, key *rsa.PrivateKey, claims TokenClaims) string {
	t.Helper()

	claimsJSON, err := json.Marshal(claims)
	require.NoError(t, err)

	digest := sha256.Sum256(claimsJSON)
	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	require.NoError(t, err)

	return base64.RawURLEncoding.EncodeToString(claimsJSON) + "." +
		base64.RawURLEncoding.EncodeToString(signature)
}

func tokenServiceFor(t *testing.T, key *rsa.PrivateKey) *TokenService {
	t.Helper()

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemKey := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/helper/public_key" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"public_key": pemKey})
	}))
	t.Cleanup(stub.Close)

	cfg := config.Config{SiteURL: tokenSiteURL, ControlPlaneURL: stub.URL}
	return NewTokenService(database.DB{}, NewControlPlaneClient(cfg), cfg)
}

func TestValidateAcceptsSignedToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	service := tokenServiceFor(t, key)

	token := signToken(t, key, TokenClaims{
		Origin:    tokenSiteURL,
		Subject:   "runner-1",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})

	claims, err := service.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "runner-1", claims.Subject)
}

func TestValidateRejections(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	service := tokenServiceFor(t, key)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	validClaims := TokenClaims{
		Origin:    tokenSiteURL,
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}

	tests := []struct {
		name     string
		token    string
		expected error
	}{
		{
			name:     "missing separator",
			token:    "nodothere",
			expected: ErrTokenMalformed,
		},
		{
			name:     "bad base64",
			token:    "!!!.???",
			expected: ErrTokenMalformed,
		},
		{
			name:     "wrong signing key",
			token:    signToken(t, otherKey, validClaims),
			expected: ErrTokenSignature,
		},
		{
			name: "tampered claims",
			token: func() string {
				good := signToken(t, key, validClaims)
				signature := good[strings.Index(good, ".")+1:]
				forged := TokenClaims{Origin: tokenSiteURL, Subject: "evil",
					ExpiresAt: validClaims.ExpiresAt}
				forgedJSON, _ := json.Marshal(forged)
				return base64.RawURLEncoding.EncodeToString(forgedJSON) + "." + signature
			}(),
			expected: ErrTokenSignature,
		},
		{
			name: "origin mismatch",
			token: signToken(t, key, TokenClaims{
				Origin:    "https://elsewhere.example.com",
				ExpiresAt: time.Now().Add(time.Hour).Unix(),
			}),
			expected: ErrTokenOrigin,
		},
		{
			name: "expired",
			token: signToken(t, key, TokenClaims{
				Origin:    tokenSiteURL,
				ExpiresAt: time.Now().Add(-time.Minute).Unix(),
			}),
			expected: ErrTokenExpired,
		},
		{
			name: "zero expiry",
			token: signToken(t, key, TokenClaims{
				Origin: tokenSiteURL,
			}),
			expected: ErrTokenExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Validate(context.Background(), tt.token)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}
