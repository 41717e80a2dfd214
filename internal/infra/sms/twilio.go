package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"noticore/internal/domain/notification"
)

var _ notification.SMSSender = (*TwilioSender)(nil)

const defaultBaseURL = "https://api.twilio.com"

// ErrInvalidPhoneNumber is returned when a destination number cannot be
// normalized to E.164 form. No API call is made.
var ErrInvalidPhoneNumber = errors.New("invalid phone number")

// TwilioSender sends SMS messages through the Twilio Messages API.
type TwilioSender struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *http.Client
}

// NewTwilioSender creates a Twilio SMS sender. Credentials may be empty;
// Send then reports ErrNotConfigured instead of calling the API.
func NewTwilioSender(accountSID, authToken, fromNumber string) *TwilioSender {
	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NormalizeNumber coerces a destination number into E.164 form:
// 10 digits get a +1 prefix, 11 digits starting with 1 get a + prefix,
// anything longer keeps its digits behind a +, and fewer than 10 digits is
// rejected.
func NormalizeNumber(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	switch {
	case len(d) == 10:
		return "+1" + d, nil
	case len(d) == 11 && d[0] == '1':
		return "+" + d, nil
	case len(d) > 10:
		return "+" + d, nil
	default:
		return "", ErrInvalidPhoneNumber
	}
}

// Send normalizes the destination and issues one message-creation call,
// returning the message SID.
func (t *TwilioSender) Send(ctx context.Context, msg *notification.SMSMessage) (string, error) {
	if t.accountSID == "" || t.authToken == "" || t.fromNumber == "" {
		return "", notification.ErrNotConfigured
	}

	to, err := NormalizeNumber(msg.To)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.fromNumber)
	form.Set("Body", msg.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, t.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		}
		_ = json.Unmarshal(respBody, &errResp)

		msg := errResp.Message
		if msg == "" {
			msg = fmt.Sprintf("twilio API error: status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("twilio: %s", msg)
	}

	var successResp struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(respBody, &successResp); err != nil {
		return "", fmt.Errorf("parsing twilio response: %w", err)
	}

	return successResp.SID, nil
}
