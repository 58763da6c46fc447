package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/invoice-payments/internal"
	gwtypes "github.com/frahmantamala/invoice-payments/internal/core/datamodel/paymentgateway"
)

// DirectDebitClient talks to the batch-style direct-debit authorization
// provider. It only reports transport problems as errors; declined
// authorizations come back as regular responses.
type DirectDebitClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	logger  *slog.Logger
}

func NewDirectDebitClient(cfg internal.ProviderEndpoint, logger *slog.Logger) *DirectDebitClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DirectDebitClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *DirectDebitClient) RunAuthorization(ctx context.Context, req *gwtypes.AuthorizationRequest) (*gwtypes.AuthorizationResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/v1/authorizations", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("request creation error: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Info("sending direct-debit authorization",
		"url", url,
		"merchant_reference", req.MerchantReference,
		"amount_minor", req.AmountMinor)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("response read error: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("direct-debit provider returned error",
			"status", resp.StatusCode,
			"response", string(respBody),
			"merchant_reference", req.MerchantReference)
		return nil, fmt.Errorf("direct-debit provider error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	var authResp gwtypes.AuthorizationResponse
	if err := json.Unmarshal(respBody, &authResp); err != nil {
		return nil, fmt.Errorf("response unmarshal error: %w", err)
	}

	c.logger.Info("direct-debit authorization completed",
		"merchant_reference", req.MerchantReference,
		"status", authResp.Status,
		"tx_id", authResp.TxID)

	return &authResp, nil
}
