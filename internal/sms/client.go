// Package sms sends text messages through a Twilio-compatible REST gateway.
package sms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"smartinventory/internal/config"
)

// ErrNotConfigured is returned by Send when gateway credentials are missing.
var ErrNotConfigured = errors.New("sms gateway not configured")

// Sender delivers a single message and returns the gateway's message id.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
	Configured() bool
}

// Client is a resty-backed implementation of Sender.
type Client struct {
	httpClient *resty.Client
	accountSID string
	from       string
	configured bool
}

// NewClient builds a gateway client from configuration. An unconfigured client is valid;
// Send then fails with ErrNotConfigured.
func NewClient(cfg config.SMSConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	// outbound gateway calls join the caller's trace
	restyClient := resty.NewWithClient(&http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "sms " + r.Method
			}),
		),
	})
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &Client{
		httpClient: restyClient,
		accountSID: cfg.AccountSID,
		from:       cfg.From,
		configured: cfg.SMSConfigured(),
	}
}

type messageResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type apiError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func (c *Client) Configured() bool { return c.configured }

func (c *Client) Send(ctx context.Context, to, body string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	result := new(messageResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"To":   to,
			"From": c.from,
			"Body": body,
		}).
		SetResult(result).
		SetError(apiErr).
		Post(fmt.Sprintf("/Accounts/%s/Messages.json", c.accountSID))
	if err != nil {
		return "", fmt.Errorf("send sms: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		code := resp.StatusCode()
		if apiErr.Code != 0 {
			code = apiErr.Code
		}
		return "", fmt.Errorf("sms api error: code=%d, message=%s", code, apiErr.Message)
	}

	return result.SID, nil
}
