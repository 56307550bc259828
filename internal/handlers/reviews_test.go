package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/apperror"
	"storefront/internal/models"

	"github.com/google/uuid"
)

func TestReviewHandler_Create(t *testing.T) {
	review := &models.Review{ID: uuid.New(), ProductID: "p1", UserID: "u1", Rating: 5, Title: "Great"}
	h := NewReviewHandler(&stubReviews{review: review}, newTestLogger())

	body := bytes.NewBufferString(`{"product_id":"p1","user_id":"u1","rating":5,"title":"Great","body":"Works as described"}`)
	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodPost, "/api/reviews", body))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
}

func TestReviewHandler_Create_InvalidRating(t *testing.T) {
	h := NewReviewHandler(&stubReviews{err: apperror.Validation("Rating must be between 1 and 5", nil)}, newTestLogger())

	body := bytes.NewBufferString(`{"product_id":"p1","user_id":"u1","rating":6}`)
	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodPost, "/api/reviews", body))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if msg := decodeError(t, rr.Body); msg != "Rating must be between 1 and 5" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestReviewHandler_List(t *testing.T) {
	stub := &stubReviews{}
	h := NewReviewHandler(stub, newTestLogger())

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/api/reviews", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without productId, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/api/reviews?productId=p1&limit=5", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if stub.limit != 5 {
		t.Fatalf("expected limit 5, got %d", stub.limit)
	}
	if body := bytes.TrimSpace(rr.Body.Bytes()); string(body) != "[]" {
		t.Fatalf("expected empty array, got %s", body)
	}
}
