package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestUUIDParam(t *testing.T) {
	id := "123e4567-e89b-12d3-a456-426614174000"
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	req := httptest.NewRequest(http.MethodGet, "/api/user/coupons/"+id, nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	parsed, err := uuidParam(req, "id")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if parsed.String() != id {
		t.Fatalf("unexpected id: %s", parsed)
	}

	if _, err := uuidParam(req, "missing"); err == nil {
		t.Fatalf("expected error for missing param")
	}
}

func TestWriteJSONResponse(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSONResponse(rr, http.StatusOK, map[string]string{"ok": "true"})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content-type: %s", ct)
	}
	if body := rr.Body.String(); body == "" {
		t.Fatalf("empty body")
	}
}

func TestWriteErrorResponse_SingleFieldEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	writeErrorResponse(rr, http.StatusBadRequest, "userId is required")

	var body map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 1 || body["error"] != "userId is required" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestParseFloatOrZero(t *testing.T) {
	cases := map[string]float64{
		"":     0,
		"abc":  0,
		"-5":   0,
		"NaN":  0,
		"Inf":  0,
		"12.5": 12.5,
		" 40 ": 40,
		"0":    0,
		"1e2":  100,
	}
	for in, want := range cases {
		if got := parseFloatOrZero(in); got != want {
			t.Fatalf("parseFloatOrZero(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLocale(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/shipping/options?locale=fr", nil)
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9")
	if got := requestLocale(req); got != "fr" {
		t.Fatalf("expected query locale, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/shipping/options", nil)
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9")
	if got := requestLocale(req); got != "es-ES,es;q=0.9" {
		t.Fatalf("expected header locale, got %q", got)
	}
}

func TestDecodeJSONBody(t *testing.T) {
	var dst struct {
		Code string `json:"code"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"SAVE10"}`))
	if err := decodeJSONBody(httptest.NewRecorder(), req, &dst); err != nil || dst.Code != "SAVE10" {
		t.Fatalf("unexpected decode result: %v %+v", err, dst)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := decodeJSONBody(httptest.NewRecorder(), req, &dst); err == nil || err.Error() != "request body is empty" {
		t.Fatalf("expected empty body error, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	if err := decodeJSONBody(httptest.NewRecorder(), req, &dst); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}
