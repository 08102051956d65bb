package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"traveldesk-service/internal/domain/entity"
	"traveldesk-service/pkg/logger"
)

// Parser runs the itinerary extraction pipeline on one message body.
type Parser interface {
	Parse(ctx context.Context, rawText string, now time.Time) (*entity.ItineraryParseResult, error)
}

// Saver persists a parsed itinerary, one record per leg.
type Saver interface {
	SaveItinerary(ctx context.Context, userID string, result *entity.ItineraryParseResult, contactInfo, rawText string) ([]*entity.TravelRecord, error)
}

// IntakeService polls the ops mailbox for forwarded booking
// confirmations and runs each one through the same parse pipeline the
// dashboard uses. Records land under the configured intake user with
// the sender's address as contact info. Every fetched message is marked
// read whether or not it parsed, so a broken confirmation is handled
// once, not on every poll.
type IntakeService struct {
	gmailService *gmail.Service
	parser       Parser
	saver        Saver
	logger       logger.Logger
	pollInterval time.Duration
	intakeUserID string
}

// NewIntakeService creates the mailbox intake worker.
func NewIntakeService(
	ctx context.Context,
	tokenSource oauth2.TokenSource,
	parser Parser,
	saver Saver,
	log logger.Logger,
	pollInterval time.Duration,
	intakeUserID string,
) (*IntakeService, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &IntakeService{
		gmailService: service,
		parser:       parser,
		saver:        saver,
		logger:       log,
		pollInterval: pollInterval,
		intakeUserID: intakeUserID,
	}, nil
}

// Run polls the mailbox until the context ends.
func (s *IntakeService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	if err := s.FetchAndProcess(ctx); err != nil {
		s.logger.Error("Initial mailbox fetch failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Mailbox intake stopped")
			return
		case <-ticker.C:
			if err := s.FetchAndProcess(ctx); err != nil {
				s.logger.Error("Mailbox fetch failed", "error", err)
			}
		}
	}
}

// FetchAndProcess handles every unread message in the inbox. Unread
// status doubles as the processing queue: a message fetched but not yet
// marked read is picked up again on the next poll.
func (s *IntakeService) FetchAndProcess(ctx context.Context) error {
	resp, err := s.gmailService.Users.Messages.List("me").Q("is:unread in:inbox").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}
	if len(resp.Messages) == 0 {
		s.logger.Debug("No unread messages")
		return nil
	}

	processed := 0
	for _, msg := range resp.Messages {
		fullMsg, err := s.gmailService.Users.Messages.Get("me", msg.Id).Context(ctx).Do()
		if err != nil {
			s.logger.Error("Failed to get message", "msgId", msg.Id, "error", err)
			continue
		}

		intake := s.convert(fullMsg)
		s.process(ctx, intake)

		if err := s.markRead(ctx, msg.Id); err != nil {
			s.logger.Error("Failed to mark message read", "msgId", msg.Id, "error", err)
			continue
		}
		processed++
	}

	s.logger.Info("Mailbox poll completed", "unread", len(resp.Messages), "processed", processed)
	return nil
}

// process runs one message through the pipeline. Parse failures are
// terminal for the message: the diagnostics go to the log and the
// message is still marked handled by the caller.
func (s *IntakeService) process(ctx context.Context, msg *intakeMessage) {
	body := strings.TrimSpace(msg.Body)
	if body == "" {
		s.logger.Debug("Message has no text body, skipping", "msgId", msg.ID, "subject", msg.Subject)
		return
	}

	result, err := s.parser.Parse(ctx, body, time.Now().UTC())
	if err != nil {
		s.logger.Warn("Forwarded confirmation did not parse",
			"msgId", msg.ID,
			"from", msg.From,
			"subject", msg.Subject,
			"error", err)
		return
	}

	records, err := s.saver.SaveItinerary(ctx, s.intakeUserID, result, replyAddress(msg.From), body)
	if err != nil {
		s.logger.Error("Failed to save intake itinerary",
			"msgId", msg.ID,
			"pnr", result.PNR,
			"error", err)
		return
	}

	s.logger.Info("Intake itinerary saved",
		"msgId", msg.ID,
		"from", msg.From,
		"pnr", result.PNR,
		"records", len(records))
}

func (s *IntakeService) markRead(ctx context.Context, msgID string) error {
	_, err := s.gmailService.Users.Messages.Modify("me", msgID, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	return err
}

type intakeMessage struct {
	ID      string
	From    string
	Subject string
	Body    string
}

// convert pulls the headers and the plain-text body out of a Gmail
// message. Multipart messages prefer text/plain over text/html.
func (s *IntakeService) convert(msg *gmail.Message) *intakeMessage {
	intake := &intakeMessage{ID: msg.Id}

	if msg.Payload == nil {
		return intake
	}
	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			intake.From = header.Value
		case "Subject":
			intake.Subject = header.Value
		}
	}

	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		if data, err := base64.URLEncoding.DecodeString(msg.Payload.Body.Data); err == nil {
			intake.Body = string(data)
		}
	}

	var htmlBody string
	for _, part := range msg.Payload.Parts {
		if part.Body == nil || part.Body.Data == "" {
			continue
		}
		data, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			s.logger.Debug("Undecodable message part", "msgId", msg.Id, "mimeType", part.MimeType)
			continue
		}
		switch part.MimeType {
		case "text/plain":
			intake.Body = string(data)
		case "text/html":
			htmlBody = string(data)
		}
	}
	if intake.Body == "" {
		intake.Body = htmlBody
	}
	return intake
}

// replyAddress extracts the bare address from a "Name <addr>" header.
func replyAddress(from string) string {
	if start := strings.LastIndex(from, "<"); start >= 0 {
		if end := strings.LastIndex(from, ">"); end > start {
			return from[start+1 : end]
		}
	}
	return strings.TrimSpace(from)
}
