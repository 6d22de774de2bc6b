package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// smsRequest is the JSON body posted to the SMS gateway.
type smsRequest struct {
	To       string `json:"to"`
	Message  string `json:"message"`
	SenderID string `json:"sender_id"`
}

// smsResponse is the gateway's acknowledgement.
type smsResponse struct {
	Status    string `json:"status"` // "queued" | "sent" | "failed"
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

// SMSClient is an HTTP client for the SMS gateway. All sends go through a
// circuit breaker so a gateway outage fast-fails instead of tying up workers.
type SMSClient struct {
	baseURL    string
	senderID   string
	apiToken   string
	httpClient *http.Client
	breaker    *CircuitBreaker
}

func NewSMSClient(baseURL, senderID, apiToken string, breaker *CircuitBreaker) *SMSClient {
	return &SMSClient{
		baseURL:    baseURL,
		senderID:   senderID,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		breaker:    breaker,
	}
}

// Breaker exposes the circuit breaker for the health endpoint.
func (c *SMSClient) Breaker() *CircuitBreaker {
	return c.breaker
}

// SendSMS posts one message to the gateway through the circuit breaker.
func (c *SMSClient) SendSMS(ctx context.Context, phone, message string) error {
	return c.breaker.Execute(func() error {
		return c.send(ctx, phone, message)
	})
}

func (c *SMSClient) send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(smsRequest{
		To:       phone,
		Message:  message,
		SenderID: c.senderID,
	})
	if err != nil {
		return fmt.Errorf("sms: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sms: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("sms: gateway returned %d", resp.StatusCode)
	}

	var result smsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("sms: decode response: %w", err)
	}
	if result.Status == "failed" {
		return fmt.Errorf("sms: gateway rejected message: %s", result.Error)
	}
	return nil
}
