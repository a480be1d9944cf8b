package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotConfigured is returned by provider operations that cannot silently
// no-op when SMS_API_KEY is empty (OTP generate/verify), so callers can fall
// back to locally issued codes.
var ErrNotConfigured = errors.New("sms provider not configured")

// PersonalizedItem is one destination+message pair for the personalized
// endpoint.
type PersonalizedItem struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// Provider is the outbound SMS delivery collaborator. The general endpoint
// takes one message for many destinations; the personalized endpoint takes
// per-destination messages. Nil-safe no-op when unconfigured.
type Provider interface {
	SendGeneral(ctx context.Context, message string, recipients []string) error
	SendPersonalized(ctx context.Context, items []PersonalizedItem) error
	OTPGenerate(ctx context.Context, phone string) error
	OTPVerify(ctx context.Context, phone, code string) (bool, error)
	Balance(ctx context.Context) (map[string]interface{}, error)
	History(ctx context.Context) ([]map[string]interface{}, error)
}

// HTTPProvider talks JSON to the SMS gateway. Same env as the portal:
// SMS_BASE_URL, SMS_API_KEY, SMS_SENDER_ID.
type HTTPProvider struct {
	BaseURL  string
	APIKey   string
	SenderID string
	Client   *http.Client
}

type generalSendRequest struct {
	Sender     string   `json:"sender"`
	Message    string   `json:"message"`
	Recipients []string `json:"recipients"`
}

type personalizedSendRequest struct {
	Sender   string             `json:"sender"`
	Messages []PersonalizedItem `json:"messages"`
}

// SendGeneral sends one message to many destinations.
func (p *HTTPProvider) SendGeneral(ctx context.Context, message string, recipients []string) error {
	if p.APIKey == "" {
		return nil
	}
	body := generalSendRequest{Sender: p.SenderID, Message: message, Recipients: recipients}
	_, err := p.do(ctx, http.MethodPost, "/v2/sms/send", body)
	return err
}

// SendPersonalized sends one message per destination.
func (p *HTTPProvider) SendPersonalized(ctx context.Context, items []PersonalizedItem) error {
	if p.APIKey == "" {
		return nil
	}
	body := personalizedSendRequest{Sender: p.SenderID, Messages: items}
	_, err := p.do(ctx, http.MethodPost, "/v2/sms/send/personalized", body)
	return err
}

type otpGenerateRequest struct {
	Expiry   int    `json:"expiry"`
	Length   int    `json:"length"`
	Medium   string `json:"medium"`
	Message  string `json:"message"`
	Number   string `json:"number"`
	SenderID string `json:"sender_id"`
	Type     string `json:"type"`
}

type otpVerifyRequest struct {
	Number string `json:"number"`
	Code   string `json:"code"`
}

// OTPGenerate asks the gateway to issue and text its own one-time code.
func (p *HTTPProvider) OTPGenerate(ctx context.Context, phone string) error {
	if p.APIKey == "" {
		return ErrNotConfigured
	}
	body := otpGenerateRequest{
		Expiry:   5,
		Length:   6,
		Medium:   "sms",
		Message:  "Your verification code is %otp_code%. It expires in 5 minutes.",
		Number:   phone,
		SenderID: p.SenderID,
		Type:     "numeric",
	}
	_, err := p.do(ctx, http.MethodPost, "/api/otp/generate", body)
	return err
}

// OTPVerify checks a gateway-issued code. The gateway answers code "1100" on
// success and an error code otherwise.
func (p *HTTPProvider) OTPVerify(ctx context.Context, phone, code string) (bool, error) {
	if p.APIKey == "" {
		return false, ErrNotConfigured
	}
	raw, err := p.do(ctx, http.MethodPost, "/api/otp/verify", otpVerifyRequest{Number: phone, Code: code})
	if err != nil {
		return false, err
	}
	var out struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return false, err
	}
	return out.Code == "1100", nil
}

// Balance returns the provider account balance payload as-is.
func (p *HTTPProvider) Balance(ctx context.Context) (map[string]interface{}, error) {
	raw, err := p.do(ctx, http.MethodGet, "/v2/clients/balance-details", nil)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// History returns the provider send history payload as-is.
func (p *HTTPProvider) History(ctx context.Context) ([]map[string]interface{}, error) {
	raw, err := p.do(ctx, http.MethodGet, "/v2/sms/history", nil)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

func (p *HTTPProvider) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("api-key", p.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sms provider: %s %s failed: status %d", method, path, resp.StatusCode)
	}
	return raw, nil
}
