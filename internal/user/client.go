package user

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/invoice-payments/internal"
	userdm "github.com/frahmantamala/invoice-payments/internal/core/datamodel/user"
)

// Client reads user records from the user-directory service. A missing user
// is (nil, nil), not an error; callers decide whether that is fatal.
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
		baseURL: cfg.UserServiceURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) Load(ctx context.Context, locationID, userID int64, includeDeleted bool) (*userdm.User, error) {
	url := fmt.Sprintf("%s/v1/locations/%d/users/%d?include_deleted=%t", c.baseURL, locationID, userID, includeDeleted)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation error: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user directory returned status %d", resp.StatusCode)
	}

	var u userdm.User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	return &u, nil
}
