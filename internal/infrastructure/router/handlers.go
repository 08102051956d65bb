package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"traveldesk-service/internal/domain/entity"
	"traveldesk-service/internal/interface/export"
	"traveldesk-service/internal/usecase"
	"traveldesk-service/pkg/logger"
	"traveldesk-service/templates"
)

// ItineraryParser runs the extraction pipeline on pasted text.
type ItineraryParser interface {
	Parse(ctx context.Context, rawText string, now time.Time) (*entity.ItineraryParseResult, error)
}

// RecordGateway is the persisted-records surface the handlers need.
type RecordGateway interface {
	SaveItinerary(ctx context.Context, userID string, result *entity.ItineraryParseResult, contactInfo, rawText string) ([]*entity.TravelRecord, error)
	List(ctx context.Context, userID string, now time.Time) ([]usecase.RecordView, error)
	Batch(ctx context.Context, userID, recordID string) ([]*entity.TravelRecord, error)
	CompleteCheckin(ctx context.Context, userID, recordID string) error
	Delete(ctx context.Context, userID, recordID string) error
}

// Pinger reports whether one backing service is reachable.
type Pinger func(ctx context.Context) error

// Handlers carries the handler dependencies.
type Handlers struct {
	parser   ItineraryParser
	records  RecordGateway
	invoices *export.InvoiceRenderer
	calendar *export.CalendarExporter
	pingers  map[string]Pinger
	armed    func() int
	version  string
	upSince  time.Time
	logger   logger.Logger
}

// NewHandlers creates the handler set. pingers keys become service
// names in the health payload; armed may be nil when no scheduler runs.
func NewHandlers(
	parser ItineraryParser,
	records RecordGateway,
	pingers map[string]Pinger,
	armed func() int,
	version string,
	logger logger.Logger,
) *Handlers {
	return &Handlers{
		parser:   parser,
		records:  records,
		invoices: export.NewInvoiceRenderer(),
		calendar: export.NewCalendarExporter(),
		pingers:  pingers,
		armed:    armed,
		version:  version,
		upSince:  time.Now(),
		logger:   logger,
	}
}

type parseRequest struct {
	ItineraryText string `json:"itinerary_text"`
}

// ParseItinerary handles POST /api/v1/itineraries/parse. Parsing never
// persists anything; the caller decides what to do with the result.
func (h *Handlers) ParseItinerary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req parseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := h.parser.Parse(r.Context(), req.ItineraryText, time.Now().UTC())
		if err != nil {
			h.logger.Warn("Parse request failed", "userId", UserID(r.Context()), "error", err)
			respondWithError(w, statusFor(err), err.Error())
			return
		}
		respondWithSuccess(w, http.StatusOK, result)
	}
}

type saveRequest struct {
	Itinerary     *entity.ItineraryParseResult `json:"itinerary"`
	ContactInfo   string                       `json:"contact_info"`
	ItineraryText string                       `json:"itinerary_text"`
}

// SaveRecords handles POST /api/v1/records: the explicit opt-in that
// turns a parse result into persisted legs with armed reminders.
func (h *Handlers) SaveRecords() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		records, err := h.records.SaveItinerary(r.Context(), UserID(r.Context()), req.Itinerary, req.ContactInfo, req.ItineraryText)
		if err != nil {
			h.logger.Error("Save request failed", "userId", UserID(r.Context()), "error", err)
			respondWithError(w, statusFor(err), err.Error())
			return
		}
		respondWithSuccess(w, http.StatusCreated, &records)
	}
}

// ListRecords handles GET /api/v1/records, most pressing first.
func (h *Handlers) ListRecords() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := h.records.List(r.Context(), UserID(r.Context()), time.Now().UTC())
		if err != nil {
			respondWithError(w, statusFor(err), err.Error())
			return
		}
		respondWithSuccess(w, http.StatusOK, &views)
	}
}

// GetBatch handles GET /api/v1/records/{recordID}/batch: every leg
// saved together with the given record.
func (h *Handlers) GetBatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := h.records.Batch(r.Context(), UserID(r.Context()), chi.URLParam(r, "recordID"))
		if err != nil {
			respondWithError(w, statusFor(err), err.Error())
			return
		}
		respondWithSuccess(w, http.StatusOK, &records)
	}
}

type checkinResponse struct {
	ID               string `json:"id"`
	CheckinCompleted bool   `json:"checkin_completed"`
}

// CompleteCheckin handles PATCH /api/v1/records/{recordID}/checkin.
func (h *Handlers) CompleteCheckin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")
		if err := h.records.CompleteCheckin(r.Context(), UserID(r.Context()), recordID); err != nil {
			respondWithError(w, statusFor(err), err.Error())
			return
		}
		respondWithSuccess(w, http.StatusOK, &checkinResponse{ID: recordID, CheckinCompleted: true})
	}
}

type deleteResponse struct {
	ID string `json:"id"`
}

// DeleteRecord handles DELETE /api/v1/records/{recordID}.
func (h *Handlers) DeleteRecord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")
		if err := h.records.Delete(r.Context(), UserID(r.Context()), recordID); err != nil {
			respondWithError(w, statusFor(err), err.Error())
			return
		}
		respondWithSuccess(w, http.StatusOK, &deleteResponse{ID: recordID})
	}
}

// Invoice handles GET /api/v1/records/{recordID}/invoice and streams
// the PDF for the record's whole batch.
func (h *Handlers) Invoice() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := h.records.Batch(r.Context(), UserID(r.Context()), chi.URLParam(r, "recordID"))
		if err != nil {
			respondWithError(w, statusFor(err), err.Error())
			return
		}

		pdf, number, err := h.invoices.Render(export.FromRecords(records), time.Now().UTC())
		if err != nil {
			h.logger.Error("Invoice render failed", "recordId", chi.URLParam(r, "recordID"), "error", err)
			respondWithError(w, http.StatusInternalServerError, "invoice rendering failed")
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+number+`.pdf"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pdf)
	}
}

// Calendar handles GET /api/v1/records/{recordID}/calendar and streams
// an iCalendar file with one event per leg in the batch.
func (h *Handlers) Calendar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := h.records.Batch(r.Context(), UserID(r.Context()), chi.URLParam(r, "recordID"))
		if err != nil {
			respondWithError(w, statusFor(err), err.Error())
			return
		}

		ics := h.calendar.Build(records, time.Now().UTC())
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="itinerary.ics"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(ics))
	}
}

type shareResponse struct {
	Message      string `json:"message"`
	WhatsAppLink string `json:"whatsapp_link"`
}

// Share handles GET /api/v1/records/{recordID}/share: the trip summary
// as plain text plus a prefilled WhatsApp link.
func (h *Handlers) Share() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := h.records.Batch(r.Context(), UserID(r.Context()), chi.URLParam(r, "recordID"))
		if err != nil {
			respondWithError(w, statusFor(err), err.Error())
			return
		}

		message := templates.ShareMessage(records)
		respondWithSuccess(w, http.StatusOK, &shareResponse{
			Message:      message,
			WhatsAppLink: templates.WhatsAppShareLink(message),
		})
	}
}
