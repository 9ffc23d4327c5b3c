package webhook

import (
	"context"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/logger"
)

// Client makes outbound webhook calls: settlement notifications and uptime pings.
type Client struct {
	httpClient    *resty.Client
	logger        *logger.Logger
	settlementURL string
}

// SettlementEvent is the JSON body posted when a bridge transaction reaches a terminal state.
type SettlementEvent struct {
	Event       string                   `json:"event"`
	Transaction *model.BridgeTransaction `json:"transaction"`
	SentAt      time.Time                `json:"sentAt"`
}

// New creates a webhook client with timeout. An empty settlementURL disables
// settlement notifications.
func New(logger *logger.Logger, settlementURL string) *Client {
	return &Client{
		httpClient: resty.New().
			SetTimeout(10*time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(500*time.Millisecond).
			SetHeader("Content-Type", "application/json"),
		logger:        logger,
		settlementURL: settlementURL,
	}
}

// NotifySettlement posts a terminal record to the settlement webhook.
func (c *Client) NotifySettlement(ctx context.Context, record *model.BridgeTransaction) error {
	if c.settlementURL == "" || record == nil {
		return nil
	}

	body := SettlementEvent{
		Event:       "bridge_transaction." + string(record.Status),
		Transaction: record,
		SentAt:      time.Now().UTC(),
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		Post(c.settlementURL)
	if err != nil {
		return errors.Wrap(err, "failed to post settlement webhook")
	}
	if resp.IsError() {
		return errors.Errorf("settlement webhook returned %s", resp.Status())
	}

	c.logger.Info("[NotifySettlement] webhook delivered", map[string]string{
		"id":          strconv.FormatInt(record.ID, 10),
		"status":      string(record.Status),
		"status_code": strconv.Itoa(resp.StatusCode()),
	})
	return nil
}

// CallUptimeWebhook makes a simple GET request to the webhook URL
func (c *Client) CallUptimeWebhook(ctx context.Context, webhookURL string) {
	if webhookURL == "" {
		return
	}

	resp, err := c.httpClient.R().SetContext(ctx).Get(webhookURL)
	if err != nil {
		c.logger.Error("Failed to call uptime webhook", map[string]string{
			"url":   webhookURL,
			"error": err.Error(),
		})
		return
	}

	c.logger.Info("Successfully called uptime webhook", map[string]string{
		"url":         webhookURL,
		"status_code": resp.Status(),
	})
}
