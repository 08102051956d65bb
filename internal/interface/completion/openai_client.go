package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"

	"traveldesk-service/internal/domain/entity"
	"traveldesk-service/pkg/logger"
)

// systemPromptTemplate pins the model to the exact JSON shape the
// validator accepts. The current date is injected so yearless itinerary
// dates resolve to the next occurrence, not the past one.
const systemPromptTemplate = `You are a travel itinerary parser. Today's date is %s.

Extract booking details from the text the user pastes and reply with a single JSON object, no markdown fences, no commentary. Use exactly these keys:

{
  "passengerName": "full name(s), comma separated",
  "pnr": "booking record locator",
  "bookingReference": "airline reference if different from pnr, else omit",
  "totalAmount": 0,
  "currency": "3-letter code, empty string if unknown",
  "flights": [
    {
      "airlineCode": "2-letter IATA code",
      "airlineName": "full airline name",
      "flightNumber": "code and number, e.g. UR 121",
      "cabinClass": "single booking letter",
      "cabinClassName": "First, Business, Premium Economy or Economy",
      "departureDate": "Month Day, Year",
      "arrivalDate": "Month Day, Year",
      "departureAirport": "3-letter IATA code",
      "departureCity": "city name",
      "departureTime": "h:mm AM/PM",
      "arrivalAirport": "3-letter IATA code",
      "arrivalCity": "city name",
      "arrivalTime": "h:mm AM/PM",
      "duration": "e.g. 2h 45m, empty if unknown",
      "overnight": false,
      "confirmationStatus": "omit if unknown"
    }
  ]
}

Dates without a year belong to the next future occurrence. Use 12-hour clock times. Set totalAmount to 0 when no fare appears in the text. Never invent flights that are not in the text.`

// Options configures the completion client. Zero RPS disables
// rate limiting.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	RPS         float64
}

// OpenAIClient calls a chat-completion endpoint to turn pasted
// itinerary text into schema JSON. One completion per call, no SDK
// retries; the caller decides whether a failure is worth retrying.
type OpenAIClient struct {
	client  openai.Client
	limiter *rate.Limiter
	logger  logger.Logger
	model   string
	opts    Options
}

// NewOpenAIClient builds the client once at startup.
func NewOpenAIClient(opts Options, log logger.Logger) *OpenAIClient {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}

	return &OpenAIClient{
		client:  openai.NewClient(reqOpts...),
		limiter: limiter,
		logger:  log,
		model:   opts.Model,
		opts:    opts,
	}
}

// Complete sends the pasted text and returns the model's raw reply.
func (c *OpenAIClient) Complete(ctx context.Context, rawText string, now time.Time) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(c.opts.Temperature),
		MaxTokens:   openai.Int(int64(c.opts.MaxTokens)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fmt.Sprintf(systemPromptTemplate, now.Format("January 2, 2006"))),
			openai.UserMessage(rawText),
		},
	})
	if err != nil {
		return "", c.mapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", entity.ErrEmptyCompletion
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", entity.ErrEmptyCompletion
	}

	c.logger.Debug("Completion received",
		"model", c.model,
		"inputChars", len(rawText),
		"outputChars", len(content),
		"durationMs", time.Since(start).Milliseconds())
	return content, nil
}

func (c *OpenAIClient) mapError(err error) error {
	var apiErr *openai.Error
	switch {
	case errors.As(err, &apiErr):
		return &entity.UpstreamError{StatusCode: apiErr.StatusCode, Body: apiErr.Message}
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w after %s", entity.ErrUpstreamTimeout, c.opts.Timeout)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %v", entity.ErrUpstreamUnavailable, err)
	}
}
