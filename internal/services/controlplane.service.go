package services

import (
	"context"
	"encoding/json"
	"fmt"
	"formsentry/config"
	"formsentry/internal/logger"
	"io"
	"net/http"
	"time"
)

// ControlPlaneClient talks to the test harness control plane. Both lookups
// it serves (authorized bot address, token signing key) are cached for 12
// hours by their consumers; the client itself is a thin, time-boxed fetch.
type ControlPlaneClient struct {
	baseURL string
	client  *http.Client
	log     logger.Logger
}

const controlPlaneTimeout = 5 * time.Second

func NewControlPlaneClient(config config.Config) *ControlPlaneClient {
	return &ControlPlaneClient{
		baseURL: config.ControlPlaneURL,
		client:  &http.Client{Timeout: controlPlaneTimeout},
		log:     logger.New("ControlPlaneClient"),
	}
}

func (c *ControlPlaneClient) get(ctx context.Context, path string, out any) error {
	log := c.log.Function("get")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return log.Err("failed to build control plane request", err, "path", path)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return log.Err("control plane request failed", err, "path", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return log.Error("control plane returned non-200",
			"path", path, "status", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return log.Err("failed to read control plane response", err, "path", path)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return log.Err("failed to decode control plane response", err, "path", path)
	}

	return nil
}

// FetchContainerIP returns the network address of the authorized test
// runner.
func (c *ControlPlaneClient) FetchContainerIP(ctx context.Context) (string, error) {
	var payload struct {
		ContainerIP string `json:"container_ip"`
	}
	if err := c.get(ctx, "/helper/container_ip", &payload); err != nil {
		return "", err
	}
	if payload.ContainerIP == "" {
		return "", fmt.Errorf("control plane returned empty container ip")
	}
	return payload.ContainerIP, nil
}

// FetchPublicKey returns the PEM-encoded key used to validate inbound
// authorization tokens.
func (c *ControlPlaneClient) FetchPublicKey(ctx context.Context) (string, error) {
	var payload struct {
		PublicKey string `json:"public_key"`
	}
	if err := c.get(ctx, "/helper/public_key", &payload); err != nil {
		return "", err
	}
	if payload.PublicKey == "" {
		return "", fmt.Errorf("control plane returned empty public key")
	}
	return payload.PublicKey, nil
}
