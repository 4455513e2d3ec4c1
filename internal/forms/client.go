package forms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sheet_ledger_bot/internal/metrics"

	"github.com/rs/zerolog/log"
)

var ErrSubmitFailed = errors.New("form submission failed")

// Submission is one transfer as the form expects it. Amount is already
// formatted for the form's locale.
type Submission struct {
	Reference string
	Sender    string
	Recipient string
	Amount    string
}

// FieldMap holds the opaque form field identifiers of one deployment.
// Reference is optional.
type FieldMap struct {
	Sender    string
	Recipient string
	Amount    string
	Reference string
}

// Submitter posts a transfer to the external form.
type Submitter interface {
	Submit(ctx context.Context, s Submission) error
}

type Client struct {
	httpClient *http.Client
	formURL    string
	fields     FieldMap
}

type SubmitError struct {
	Type       string
	StatusCode int
	Underlying error
}

func (e *SubmitError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("form submission failed [%s] status %d: %v", e.Type, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("form submission failed [%s]: %v", e.Type, e.Underlying)
}

func (e *SubmitError) Unwrap() []error {
	return []error{ErrSubmitFailed, e.Underlying}
}

func NewClient(formURL string, fields FieldMap, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			// The form answers a successful POST with a redirect to its
			// confirmation page; that response is the result.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		formURL: formURL,
		fields:  fields,
	}
}

// Encode builds the form body for s.
func (c *Client) Encode(s Submission) url.Values {
	v := url.Values{}
	v.Set(c.fields.Sender, s.Sender)
	v.Set(c.fields.Recipient, s.Recipient)
	v.Set(c.fields.Amount, s.Amount)
	if c.fields.Reference != "" && s.Reference != "" {
		v.Set(c.fields.Reference, s.Reference)
	}
	return v
}

// Submit performs a single POST. 200 and 302 count as accepted; anything else,
// including a transport failure, is a *SubmitError.
func (c *Client) Submit(ctx context.Context, s Submission) error {
	log.Debug().
		Str("request_id", s.Reference).
		Str("sender", s.Sender).
		Str("recipient", s.Recipient).
		Str("amount", s.Amount).
		Msg("Submitting transfer form")

	body := c.Encode(s).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.formURL, strings.NewReader(body))
	if err != nil {
		return c.fail(&SubmitError{Type: "client", Underlying: err})
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(&SubmitError{Type: "network", Underlying: err})
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusFound {
		return c.fail(&SubmitError{
			Type:       categorizeHTTPError(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Underlying: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status),
		})
	}

	metrics.IncFormSubmission("accepted")
	log.Info().
		Str("request_id", s.Reference).
		Int("status_code", resp.StatusCode).
		Msg("Transfer form accepted")
	return nil
}

func (c *Client) fail(err *SubmitError) error {
	metrics.IncFormSubmission(err.Type)
	log.Warn().Err(err).Str("type", err.Type).Msg("Transfer form rejected")
	return err
}

func categorizeHTTPError(statusCode int) string {
	switch {
	case statusCode == 401 || statusCode == 403:
		return "auth"
	case statusCode == 429:
		return "rate_limit"
	case statusCode >= 400 && statusCode < 500:
		return "client"
	case statusCode >= 500:
		return "server"
	default:
		return "unexpected"
	}
}
