package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func ping(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

type healthBody struct {
	Status       string `json:"status"`
	Dependencies map[string]struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	} `json:"dependencies"`
	Pool *PoolStats `json:"pool"`
}

func TestHealthHandler(t *testing.T) {
	down := errors.New("connection refused")
	tests := []struct {
		name       string
		deps       []Dependency
		wantCode   int
		wantStatus string
	}{
		{
			name: "all up",
			deps: []Dependency{
				{Name: "database", Required: true, Ping: ping(nil)},
				{Name: "redis", Ping: ping(nil)},
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusHealthy,
		},
		{
			name: "optional down",
			deps: []Dependency{
				{Name: "database", Required: true, Ping: ping(nil)},
				{Name: "redis", Ping: ping(down)},
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusDegraded,
		},
		{
			name: "database down",
			deps: []Dependency{
				{Name: "database", Required: true, Ping: ping(down)},
				{Name: "redis", Ping: ping(down)},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusUnhealthy,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

			stats := func() *PoolStats { return &PoolStats{TotalConns: 3, MaxConns: 20} }
			if err := HealthHandler(stats, tt.deps...)(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			var body healthBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("expected %s, got %s", tt.wantStatus, body.Status)
			}
			if len(body.Dependencies) != len(tt.deps) {
				t.Errorf("expected %d dependencies, got %d", len(tt.deps), len(body.Dependencies))
			}
			if body.Pool == nil || body.Pool.MaxConns != 20 {
				t.Errorf("expected pool stats, got %+v", body.Pool)
			}
		})
	}
}

func TestHealthHandler_ReportsErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	dep := Dependency{Name: "database", Required: true, Ping: ping(errors.New("connection refused"))}
	if err := HealthHandler(nil, dep)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body["pool"]; ok {
		t.Error("expected no pool stats when stats func is nil")
	}
	deps := body["dependencies"].(map[string]interface{})
	if db := deps["database"].(map[string]interface{}); db["error"] != "connection refused" {
		t.Errorf("expected error message, got %v", db["error"])
	}
}
