package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioBaseURL is the public Twilio REST endpoint.
const TwilioBaseURL = "https://api.twilio.com"

// TwilioSender sends WhatsApp messages through the Twilio Messages API.
type TwilioSender struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	From       string // e.g. "whatsapp:+14155238886"
	Client     *http.Client
}

func NewTwilioSender(accountSID, authToken, from string, timeout time.Duration) *TwilioSender {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TwilioSender{
		BaseURL:    TwilioBaseURL,
		AccountSID: accountSID,
		AuthToken:  authToken,
		From:       from,
		Client:     &http.Client{Timeout: timeout},
	}
}

type twilioMessageResp struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func whatsappAddr(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "whatsapp:") {
		return s
	}
	return "whatsapp:" + s
}

// Send posts the message and returns the Twilio message SID.
func (s *TwilioSender) Send(ctx context.Context, to, body string) (string, error) {
	if err := checkArgs(to, body); err != nil {
		return "", err
	}
	if s.AccountSID == "" || s.AuthToken == "" {
		return "", &DeliveryError{Provider: ProviderTwilio, Err: fmt.Errorf("credentials not configured")}
	}

	form := url.Values{}
	form.Set("From", whatsappAddr(s.From))
	form.Set("To", whatsappAddr(to))
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(s.BaseURL, "/"), url.PathEscape(s.AccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(s.AccountSID, s.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", &DeliveryError{Provider: ProviderTwilio, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &DeliveryError{Provider: ProviderTwilio, Err: err}
	}
	var decoded twilioMessageResp
	_ = json.Unmarshal(data, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := decoded.Message
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return "", &DeliveryError{Provider: ProviderTwilio, Err: fmt.Errorf("status %d: %s", resp.StatusCode, msg)}
	}
	if decoded.SID == "" {
		return "", &DeliveryError{Provider: ProviderTwilio, Err: fmt.Errorf("response missing sid")}
	}
	return decoded.SID, nil
}
