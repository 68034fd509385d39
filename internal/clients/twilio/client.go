package twilio

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client sends WhatsApp messages through the Twilio Messages API
type Client struct {
	accountSID string
	authToken  string
	from       string
	to         string
	baseURL    string
	client     *http.Client
	maxRetries int
	backoff    time.Duration
	log        zerolog.Logger
}

// Config holds Twilio client configuration
type Config struct {
	AccountSID string
	AuthToken  string
	From       string // e.g. "whatsapp:+14155238886"
	To         string
	BaseURL    string // defaults to https://api.twilio.com
}

// messageResponse is the subset of the Twilio response we care about
type messageResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"` // error description on failure
	Code    int    `json:"code"`    // Twilio error code on failure
}

// NewClient creates a new Twilio WhatsApp client
func NewClient(cfg Config, log zerolog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.twilio.com"
	}

	return &Client{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.From,
		to:         cfg.To,
		baseURL:    baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		maxRetries: 2,
		backoff:    500 * time.Millisecond,
		log:        log.With().Str("client", "twilio").Logger(),
	}
}

// IsConfigured reports whether credentials and addresses are present
func (c *Client) IsConfigured() bool {
	return c.accountSID != "" && c.authToken != "" && c.from != "" && c.to != ""
}

// Send delivers a WhatsApp message body to the configured destination.
// Transient failures (network errors, 5xx) are retried with backoff;
// client errors (4xx) fail immediately.
func (c *Client) Send(body string) error {
	if !c.IsConfigured() {
		return fmt.Errorf("twilio client not configured")
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * c.backoff)
			c.log.Warn().Int("attempt", attempt).Msg("Retrying WhatsApp send")
		}

		retryable, err := c.send(body)
		if err == nil {
			return nil
		}

		lastErr = err
		if !retryable {
			return err
		}
	}

	return fmt.Errorf("send failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// send performs a single Messages API call. The bool return indicates
// whether the failure is worth retrying.
func (c *Client) send(body string) (bool, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)

	form := url.Values{}
	form.Set("From", c.from)
	form.Set("To", c.to)
	form.Set("Body", body)

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return true, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, fmt.Errorf("failed to read response: %w", err)
	}

	var result messageResponse
	// Twilio always answers JSON; a parse failure still carries the status code
	_ = json.Unmarshal(respBody, &result)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.log.Info().Str("sid", result.SID).Str("status", result.Status).Msg("Message sent")
		return false, nil
	}

	errMsg := result.Message
	if errMsg == "" {
		errMsg = http.StatusText(resp.StatusCode)
	}

	if resp.StatusCode >= 500 {
		return true, fmt.Errorf("twilio server error (%d): %s", resp.StatusCode, errMsg)
	}

	return false, fmt.Errorf("twilio error (%d, code %d): %s", resp.StatusCode, result.Code, errMsg)
}
