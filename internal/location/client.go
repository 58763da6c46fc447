package location

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/invoice-payments/internal"
	locationdm "github.com/frahmantamala/invoice-payments/internal/core/datamodel/location"
)

// Client reads location configuration, including subsidiary provider
// credentials, from the location-config service.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewClient(cfg internal.DirectoryConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.LocationServiceURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) LoadByID(ctx context.Context, locationID int64) (*locationdm.Config, error) {
	url := fmt.Sprintf("%s/v1/locations/%d", c.baseURL, locationID)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation error: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load location: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("location config service returned status %d", resp.StatusCode)
	}

	var cfg locationdm.Config
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode location config: %w", err)
	}

	return &cfg, nil
}
