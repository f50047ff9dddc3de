package services

import (
	"context"
	"formsentry/config"
	"formsentry/internal/database"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func controlPlaneStub(t *testing.T, containerIP string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		switch r.URL.Path {
		case "/helper/container_ip":
			w.Write([]byte(`{"container_ip": "` + containerIP + `"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func identityServiceFor(cfg config.Config) *IdentityService {
	client := NewControlPlaneClient(cfg)
	return NewIdentityService(database.DB{}, client, nil, cfg)
}

func TestIsTestRequestMatchesBotAddress(t *testing.T) {
	stub := controlPlaneStub(t, "203.0.113.7", http.StatusOK)
	service := identityServiceFor(config.Config{ControlPlaneURL: stub.URL})

	assert.True(t, service.IsTestRequest(context.Background(), "203.0.113.7"))
	assert.False(t, service.IsTestRequest(context.Background(), "198.51.100.2"))
}

func TestIsTestRequestEmptyAddress(t *testing.T) {
	stub := controlPlaneStub(t, "203.0.113.7", http.StatusOK)
	service := identityServiceFor(config.Config{ControlPlaneURL: stub.URL, SkipIPCheck: true})

	assert.False(t, service.IsTestRequest(context.Background(), ""),
		"an empty address never counts as the bot, even with SkipIPCheck")
}

func TestIsTestRequestFailsClosed(t *testing.T) {
	stub := controlPlaneStub(t, "", http.StatusInternalServerError)
	service := identityServiceFor(config.Config{ControlPlaneURL: stub.URL})

	assert.False(t, service.IsTestRequest(context.Background(), "203.0.113.7"))
}

func TestIsTestRequestSkipIPCheckOnFetchFailure(t *testing.T) {
	stub := controlPlaneStub(t, "", http.StatusInternalServerError)
	service := identityServiceFor(config.Config{ControlPlaneURL: stub.URL, SkipIPCheck: true})

	assert.True(t, service.IsTestRequest(context.Background(), "203.0.113.7"))
}
