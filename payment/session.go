package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ajdinkomic/camp-in-bh/booking"
)

// CheckoutSession carries everything the external payment authority needs
// to charge the guest. Amounts are minor units; quantity is the night
// count, so the authority shows one line item priced per night.
type CheckoutSession struct {
	Currency        string
	Description     string
	UnitAmountMinor int64
	Quantity        int
	SuccessURL      string
	CancelURL       string
}

// CheckoutProvider opens a session with the payment authority and returns
// the URL the guest is redirected to. The authority is the source of
// truth for whether the guest paid; it answers through the success and
// cancel callbacks, never through this call.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, session CheckoutSession) (redirectURL string, err error)
}

// CheckoutClient is the production CheckoutProvider: a form-encoded POST
// against the authority's session endpoint with a bearer key.
type CheckoutClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewCheckoutClient(baseURL, apiKey string) *CheckoutClient {
	return &CheckoutClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *CheckoutClient) CreateSession(ctx context.Context, session CheckoutSession) (string, error) {
	form := url.Values{}
	form.Add("mode", "payment")
	form.Add("line_items[0][price_data][currency]", session.Currency)
	form.Add("line_items[0][price_data][product_data][name]", session.Description)
	form.Add("line_items[0][price_data][unit_amount]", strconv.FormatInt(session.UnitAmountMinor, 10))
	form.Add("line_items[0][quantity]", strconv.Itoa(session.Quantity))
	form.Add("success_url", session.SuccessURL)
	form.Add("cancel_url", session.CancelURL)

	endpoint := c.BaseURL + "/v1/checkout/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &booking.ExternalServiceError{Service: "payment authority", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", &booking.ExternalServiceError{Service: "payment authority", Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &booking.ExternalServiceError{Service: "payment authority", Err: err}
	}
	if res.StatusCode != http.StatusOK {
		return "", &booking.ExternalServiceError{
			Service: "payment authority",
			Err:     fmt.Errorf("session creation returned status %d: %s", res.StatusCode, body),
		}
	}

	var sessionRes struct {
		ID    string `json:"id"`
		URL   string `json:"url"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &sessionRes); err != nil {
		return "", &booking.ExternalServiceError{Service: "payment authority", Err: err}
	}
	if sessionRes.Error.Message != "" {
		return "", &booking.ExternalServiceError{Service: "payment authority", Err: errors.New(sessionRes.Error.Message)}
	}
	if sessionRes.URL == "" {
		return "", &booking.ExternalServiceError{Service: "payment authority", Err: errors.New("session response carried no redirect URL")}
	}

	return sessionRes.URL, nil
}
