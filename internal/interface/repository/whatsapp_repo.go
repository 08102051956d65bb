package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"traveldesk-service/internal/domain/repository"
	"traveldesk-service/pkg/logger"
)

// WhatsAppNotifier delivers reminders through the WhatsApp gateway
// service. Targets without a phone number fall through to the in-app
// notifier, so a reminder never disappears for lack of contact info.
type WhatsAppNotifier struct {
	logger      logger.Logger
	client      *http.Client
	baseURL     string
	bearerToken string
	fallback    repository.Notifier
}

// NewWhatsAppNotifier creates a notifier backed by the WhatsApp gateway
func NewWhatsAppNotifier(baseURL, bearerToken string, fallback repository.Notifier, logger logger.Logger) repository.Notifier {
	return &WhatsAppNotifier{
		logger:      logger,
		client:      &http.Client{Timeout: 30 * time.Second},
		baseURL:     baseURL,
		bearerToken: bearerToken,
		fallback:    fallback,
	}
}

type whatsAppMessage struct {
	PhoneNumber string `json:"phoneNumber"`
	Message     struct {
		Text string `json:"text"`
	} `json:"message"`
	Type string `json:"type"`
}

// Notify sends one text message. Title and body collapse into a single
// text payload; the gateway has no separate title field.
func (n *WhatsAppNotifier) Notify(ctx context.Context, to, title, body string) error {
	if to == "" {
		return n.fallback.Notify(ctx, to, title, body)
	}

	msg := whatsAppMessage{PhoneNumber: to, Type: "text"}
	msg.Message.Text = title + "\n\n" + body

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/messages/send", n.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.bearerToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return fmt.Errorf("whatsapp gateway returned status %d: %v", resp.StatusCode, errorBody)
	}

	n.logger.Info("Notification delivered",
		"channel", "whatsapp",
		"to", to,
		"title", title)
	return nil
}

// InAppNotifier is the degraded delivery channel: the notice is logged
// where the dashboard's activity feed picks it up. It never fails.
type InAppNotifier struct {
	logger logger.Logger
}

// NewInAppNotifier creates the fallback notifier
func NewInAppNotifier(logger logger.Logger) repository.Notifier {
	return &InAppNotifier{logger: logger}
}

func (n *InAppNotifier) Notify(ctx context.Context, to, title, body string) error {
	n.logger.Info("In-app notification",
		"to", to,
		"title", title,
		"body", body)
	return nil
}
