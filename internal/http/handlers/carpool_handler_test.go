// README: Handler tests for plan computation and auth enforcement.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/config"
	carpoolhttp "carpool/internal/http"
	"carpool/internal/infra"
	"carpool/internal/modules/carpool"
)

// fakeResolver parses "H:mm AM" clock times onto a fixed UTC day.
type fakeResolver struct{}

func (fakeResolver) Resolve(_, timeStr, _ string) (time.Time, error) {
	timeStr = strings.TrimSpace(timeStr)
	if timeStr == "" || strings.EqualFold(timeStr, "OPEN") {
		return time.Time{}, errors.New("no fixed time")
	}
	clock, err := time.Parse("3:04 PM", timeStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(2026, 3, 15, clock.Hour(), clock.Minute(), 0, 0, time.UTC), nil
}

// stubTokenVerifier is a test double for infra.TokenVerifier.
type stubTokenVerifier struct {
	token *infra.FirebaseToken
	err   error
}

func (s *stubTokenVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.FirebaseToken, error) {
	return s.token, s.err
}

func buildTestRouter(verifier infra.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := carpool.NewService(fakeResolver{}, nil, config.EngineConfig{
		MaxWaitMinutes: 60,
		GeoClusters:    8,
	})
	// No plan archive in tests; the handler skips archiving when it is nil.
	return carpoolhttp.NewRouter(carpoolhttp.RouterDeps{Carpool: svc, Verifier: verifier})
}

func doRequest(r *gin.Engine, method, path string, body any, authHeader string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validRequest() map[string]any {
	return map[string]any{
		"date": "03/15/2026",
		"bookings": []map[string]any{
			{
				"id":              "b1",
				"client_name":     "Ada",
				"pickup_time":     "9:00 AM",
				"pickup_address":  "1 A St 10001",
				"dropoff_address": "123 Main St 10001",
			},
			{
				"id":              "b2",
				"client_name":     "Grace",
				"pickup_time":     "9:10 AM",
				"pickup_address":  "2 B St 10001",
				"dropoff_address": "123 Main St 10001",
			},
		},
		"vehicles": []map[string]any{
			{"id": "v1", "driver_name": "Lin", "capacity": 4},
		},
	}
}

func TestCalculate_OK(t *testing.T) {
	r := buildTestRouter(nil)
	w := doRequest(r, http.MethodPost, "/api/v1/carpool", validRequest(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp carpool.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Date != "03/15/2026" {
		t.Errorf("date = %q", resp.Date)
	}
	if len(resp.Plan) != 1 {
		t.Fatalf("plan length = %d", len(resp.Plan))
	}
	trips := resp.Plan[0].Trips
	if len(trips) != 1 || len(trips[0].Bookings) != 2 {
		t.Errorf("expected one pooled trip with both bookings, got %+v", trips)
	}
}

func TestCalculate_InvalidJSON(t *testing.T) {
	r := buildTestRouter(nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/carpool", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCalculate_ValidationError(t *testing.T) {
	r := buildTestRouter(nil)
	body := validRequest()
	body["vehicles"] = []map[string]any{}
	w := doRequest(r, http.MethodPost, "/api/v1/carpool", body, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCalculate_AuthRequired(t *testing.T) {
	r := buildTestRouter(&stubTokenVerifier{err: errors.New("bad token")})

	w := doRequest(r, http.MethodPost, "/api/v1/carpool", validRequest(), "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d, want 401", w.Code)
	}

	w = doRequest(r, http.MethodPost, "/api/v1/carpool", validRequest(), "Bearer nope")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("invalid token: status = %d, want 401", w.Code)
	}
}

func TestCalculate_AuthOK(t *testing.T) {
	r := buildTestRouter(&stubTokenVerifier{token: &infra.FirebaseToken{UID: "u1"}})
	w := doRequest(r, http.MethodPost, "/api/v1/carpool", validRequest(), "Bearer good")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestLatestPlan_NoArchiveConfigured(t *testing.T) {
	r := buildTestRouter(nil)
	w := doRequest(r, http.MethodGet, "/api/v1/plans?date=03%2F15%2F2026", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHealth(t *testing.T) {
	r := buildTestRouter(nil)
	w := doRequest(r, http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
