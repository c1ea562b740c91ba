package claim

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/claimscrub/scrubber/internal/platform/validation"
)

const claimBody = `{
  "patient_id": "P-100",
  "payer_id": "AETNA",
  "provider_npi": "1234567893",
  "specialty": "ONCOLOGY",
  "date_of_service": "2024-03-01",
  "place_of_service": "11",
  "service_lines": [
    {"cpt_code": "96413", "icd_codes": ["C50.911"], "drug_code": "J9271", "drug_units": 200, "units": 1, "charge_amount": 450}
  ]
}`

func newTestHandler() (*Handler, *mockRepo, *echo.Echo) {
	repo := newMockRepo()
	svc := NewService(repo, &recordingPublisher{}, zerolog.Nop())
	e := echo.New()
	e.Validator = validation.New()
	return NewHandler(svc), repo, e
}

func TestHandler_CreateClaim(t *testing.T) {
	h, repo, e := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/claims", strings.NewReader(claimBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateClaim(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var got Claim
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID == uuid.Nil || got.Status != StatusDraft {
		t.Errorf("expected stored DRAFT claim, got %s %s", got.ID, got.Status)
	}
	if len(repo.store) != 1 {
		t.Errorf("expected 1 stored claim, got %d", len(repo.store))
	}
}

func TestHandler_CreateClaim_BadDate(t *testing.T) {
	h, _, e := newTestHandler()
	body := strings.Replace(claimBody, "2024-03-01", "03/01/2024", 1)

	req := httptest.NewRequest(http.MethodPost, "/claims", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreateClaim(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_CreateClaim_InvalidJSON(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/claims", strings.NewReader("{"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreateClaim(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_GetClaim_NotFound(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.GetClaim(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_GetClaim_InvalidID(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.GetClaim(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_SubmitClaim_Draft(t *testing.T) {
	h, repo, e := newTestHandler()
	cl := sampleClaim()
	repo.Create(context.Background(), cl)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())

	err := h.SubmitClaim(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Errorf("expected 409, got %v", err)
	}
}

func TestHandler_SubmitClaim(t *testing.T) {
	h, repo, e := newTestHandler()
	cl := sampleClaim()
	cl.Status = StatusDraft
	repo.Create(context.Background(), cl)
	repo.RecordValidation(context.Background(), cl.ID, 100, StatusValidated, time.Now())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())

	if err := h.SubmitClaim(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_RecordResponse_Validation(t *testing.T) {
	h, repo, e := newTestHandler()
	cl := sampleClaim()
	repo.Create(context.Background(), cl)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"LOST"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())

	err := h.RecordResponse(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_ListClaims(t *testing.T) {
	h, repo, e := newTestHandler()
	for i := 0; i < 3; i++ {
		cl := sampleClaim()
		cl.PayerID = "AETNA"
		repo.Create(context.Background(), cl)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/claims?payer_id=AETNA&limit=2", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListClaims(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Data  []Claim `json:"data"`
		Total int     `json:"total"`
		Links struct {
			Next string `json:"next"`
		} `json:"links"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Total != 3 || len(body.Data) != 2 {
		t.Errorf("expected 2 of 3 claims, got %d of %d", len(body.Data), body.Total)
	}
	if body.Links.Next != "/api/v1/claims?limit=2&offset=2&payer_id=AETNA" {
		t.Errorf("unexpected next link %q", body.Links.Next)
	}
}

func TestHandler_ListClaims_BadStatus(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/claims?status=PENDING", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.ListClaims(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_ListClaims_BadPaging(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/claims?limit=ten", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.ListClaims(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}
