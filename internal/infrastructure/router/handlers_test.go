package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traveldesk-service/internal/domain/entity"
	"traveldesk-service/internal/usecase"
	"traveldesk-service/pkg/logger"
)

var testSecret = []byte("test-secret")

type fakeParser struct {
	result  *entity.ItineraryParseResult
	err     error
	gotText string
}

func (f *fakeParser) Parse(_ context.Context, rawText string, _ time.Time) (*entity.ItineraryParseResult, error) {
	f.gotText = rawText
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeGateway struct {
	records     []*entity.TravelRecord
	views       []usecase.RecordView
	err         error
	savedUser   string
	savedText   string
	checkins    []string
	deletes     []string
	batchUser   string
	batchRecord string
}

func (f *fakeGateway) SaveItinerary(_ context.Context, userID string, result *entity.ItineraryParseResult, contactInfo, rawText string) ([]*entity.TravelRecord, error) {
	f.savedUser = userID
	f.savedText = rawText
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeGateway) List(_ context.Context, userID string, _ time.Time) ([]usecase.RecordView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.views, nil
}

func (f *fakeGateway) Batch(_ context.Context, userID, recordID string) ([]*entity.TravelRecord, error) {
	f.batchUser = userID
	f.batchRecord = recordID
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeGateway) CompleteCheckin(_ context.Context, userID, recordID string) error {
	if f.err != nil {
		return f.err
	}
	f.checkins = append(f.checkins, recordID)
	return nil
}

func (f *fakeGateway) Delete(_ context.Context, userID, recordID string) error {
	if f.err != nil {
		return f.err
	}
	f.deletes = append(f.deletes, recordID)
	return nil
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func newTestServer(t *testing.T, parser ItineraryParser, gateway RecordGateway) *httptest.Server {
	t.Helper()
	h := NewHandlers(parser, gateway, map[string]Pinger{}, nil, "test", logger.NewNop())
	srv := httptest.NewServer(New(h, Options{JWTSecret: testSecret, CORSOrigins: []string{"*"}}))
	t.Cleanup(srv.Close)
	return srv
}

func mintToken(t *testing.T, secret []byte, userID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func sampleRecord(id string) *entity.TravelRecord {
	return &entity.TravelRecord{
		ID:               id,
		BatchID:          "batch-1",
		UserID:           "u1",
		PassengerName:    "JOHN MUTUA",
		PNR:              "DQVJ6T",
		FlightNumber:     "UR 121",
		AirlineName:      "Uganda Airlines",
		DepartureAirport: "JUB",
		ArrivalAirport:   "EBB",
		DepartureDate:    "March 18, 2026",
		DepartureTime:    "12:30 PM",
		ArrivalDate:      "March 18, 2026",
		CabinClassName:   "Economy",
		DepartureUTC:     time.Date(2026, time.March, 18, 9, 30, 0, 0, time.UTC),
	}
}

func TestParseEndpoint(t *testing.T) {
	parser := &fakeParser{result: &entity.ItineraryParseResult{
		PassengerName: "JOHN MUTUA",
		PNR:           "DQVJ6T",
		Source:        entity.SourceGDS,
		Flights:       []entity.FlightLeg{{FlightNumber: "UR 121"}},
	}}
	srv := newTestServer(t, parser, &fakeGateway{})

	resp := doRequest(t, srv, http.MethodPost, "/api/v1/itineraries/parse",
		mintToken(t, testSecret, "u1"),
		map[string]string{"itinerary_text": "UR 121 K 17OCT JUBEBB HK1 1410 1635"})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	env := decodeEnvelope(t, resp)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "UR 121 K 17OCT JUBEBB HK1 1410 1635", parser.gotText)

	var result entity.ItineraryParseResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "JOHN MUTUA", result.PassengerName)
	assert.Len(t, result.Flights, 1)
}

func TestParseEndpointErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"no flights", entity.NewParseError(entity.ErrNoFlightsExtracted, "flights array empty", ""), http.StatusUnprocessableEntity},
		{"no json", entity.NewParseError(entity.ErrNoJSONFound, "", "I could not find"), http.StatusUnprocessableEntity},
		{"malformed", entity.NewParseError(entity.ErrMalformedJSON, "unexpected end", "{"), http.StatusUnprocessableEntity},
		{"timeout", entity.ErrUpstreamTimeout, http.StatusGatewayTimeout},
		{"unavailable", entity.ErrUpstreamUnavailable, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeParser{err: tc.err}, &fakeGateway{})
			resp := doRequest(t, srv, http.MethodPost, "/api/v1/itineraries/parse",
				mintToken(t, testSecret, "u1"), map[string]string{"itinerary_text": "x"})
			assert.Equal(t, tc.code, resp.StatusCode)
			env := decodeEnvelope(t, resp)
			assert.Equal(t, "error", env.Status)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestAuthRejectsBadTokens(t *testing.T) {
	srv := newTestServer(t, &fakeParser{}, &fakeGateway{})

	cases := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
		{"wrong secret", mintToken(t, []byte("other-secret"), "u1")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, srv, http.MethodGet, "/api/v1/records", tc.token, nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestAuthAcceptsSubClaim(t *testing.T) {
	gateway := &fakeGateway{}
	srv := newTestServer(t, &fakeParser{}, gateway)

	claims := jwt.MapClaims{"sub": "sub-user", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	resp := doRequest(t, srv, http.MethodGet, "/api/v1/records", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSaveEndpointCreatesRecords(t *testing.T) {
	gateway := &fakeGateway{records: []*entity.TravelRecord{sampleRecord("rec-1")}}
	srv := newTestServer(t, &fakeParser{}, gateway)

	body := map[string]interface{}{
		"itinerary":      map[string]interface{}{"passenger_name": "JOHN MUTUA", "flights": []interface{}{}},
		"contact_info":   "+254700111222",
		"itinerary_text": "raw pasted text",
	}
	resp := doRequest(t, srv, http.MethodPost, "/api/v1/records",
		mintToken(t, testSecret, "u1"), body)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "u1", gateway.savedUser, "user id comes from the token, never the body")
	assert.Equal(t, "raw pasted text", gateway.savedText)

	env := decodeEnvelope(t, resp)
	var records []*entity.TravelRecord
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "rec-1", records[0].ID)
}

func TestListEndpoint(t *testing.T) {
	gateway := &fakeGateway{views: []usecase.RecordView{
		{TravelRecord: sampleRecord("rec-1"), Status: entity.StatusUrgent},
		{TravelRecord: sampleRecord("rec-2"), Status: entity.StatusUpcoming},
	}}
	srv := newTestServer(t, &fakeParser{}, gateway)

	resp := doRequest(t, srv, http.MethodGet, "/api/v1/records", mintToken(t, testSecret, "u1"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	var views []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &views))
	require.Len(t, views, 2)
	assert.Equal(t, "urgent", views[0]["status"])
	assert.Equal(t, "upcoming", views[1]["status"])
}

func TestCheckinEndpoint(t *testing.T) {
	gateway := &fakeGateway{}
	srv := newTestServer(t, &fakeParser{}, gateway)

	resp := doRequest(t, srv, http.MethodPatch, "/api/v1/records/rec-9/checkin",
		mintToken(t, testSecret, "u1"), nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"rec-9"}, gateway.checkins)
}

func TestCheckinEndpointNotFound(t *testing.T) {
	gateway := &fakeGateway{err: entity.ErrRecordNotFound}
	srv := newTestServer(t, &fakeParser{}, gateway)

	resp := doRequest(t, srv, http.MethodPatch, "/api/v1/records/rec-9/checkin",
		mintToken(t, testSecret, "u1"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteEndpoint(t *testing.T) {
	gateway := &fakeGateway{}
	srv := newTestServer(t, &fakeParser{}, gateway)

	resp := doRequest(t, srv, http.MethodDelete, "/api/v1/records/rec-9",
		mintToken(t, testSecret, "u1"), nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"rec-9"}, gateway.deletes)
}

func TestInvoiceEndpointStreamsPDF(t *testing.T) {
	gateway := &fakeGateway{records: []*entity.TravelRecord{sampleRecord("rec-1")}}
	srv := newTestServer(t, &fakeParser{}, gateway)

	resp := doRequest(t, srv, http.MethodGet, "/api/v1/records/rec-1/invoice",
		mintToken(t, testSecret, "u1"), nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "TT-INV-")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
	assert.Equal(t, "rec-1", gateway.batchRecord)
}

func TestCalendarEndpointStreamsICS(t *testing.T) {
	gateway := &fakeGateway{records: []*entity.TravelRecord{sampleRecord("rec-1")}}
	srv := newTestServer(t, &fakeParser{}, gateway)

	resp := doRequest(t, srv, http.MethodGet, "/api/v1/records/rec-1/calendar",
		mintToken(t, testSecret, "u1"), nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/calendar")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "BEGIN:VCALENDAR")
	assert.Contains(t, string(raw), "UR 121")
}

func TestShareEndpoint(t *testing.T) {
	gateway := &fakeGateway{records: []*entity.TravelRecord{sampleRecord("rec-1")}}
	srv := newTestServer(t, &fakeParser{}, gateway)

	resp := doRequest(t, srv, http.MethodGet, "/api/v1/records/rec-1/share",
		mintToken(t, testSecret, "u1"), nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	env := decodeEnvelope(t, resp)

	var share shareResponse
	require.NoError(t, json.Unmarshal(env.Data, &share))
	assert.Contains(t, share.Message, "UR 121")
	assert.True(t, strings.HasPrefix(share.WhatsAppLink, "https://wa.me/?text="))
	assert.NotContains(t, share.WhatsAppLink, " ")
}

func TestHealthEndpointIsOpen(t *testing.T) {
	h := NewHandlers(&fakeParser{}, &fakeGateway{}, map[string]Pinger{
		"mongodb":  func(context.Context) error { return nil },
		"postgres": func(context.Context) error { return assert.AnError },
	}, func() int { return 3 }, "1.2.3", logger.NewNop())
	srv := httptest.NewServer(New(h, Options{JWTSecret: testSecret, CORSOrigins: []string{"*"}}))
	t.Cleanup(srv.Close)

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var health healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "down", health.Status)
	assert.Equal(t, "1.2.3", health.Version)
	assert.Equal(t, 3, health.ArmedReminders)
	assert.Equal(t, "ok", health.Services["mongodb"].Status)
	assert.Equal(t, "down", health.Services["postgres"].Status)
}

func TestMetricsEndpointIsOpen(t *testing.T) {
	srv := newTestServer(t, &fakeParser{}, &fakeGateway{})

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
