package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/apperror"
	"storefront/internal/models"
)

func TestStoreCreditHandler_Balance_MissingUserID(t *testing.T) {
	stub := &stubCredits{}
	h := NewStoreCreditHandler(stub, nil, newTestLogger())

	rr := httptest.NewRecorder()
	h.Balance(rr, httptest.NewRequest(http.MethodGet, "/api/user/store-credit?userId=%20", nil))

	if rr.Code != http.StatusBadRequest || stub.calls != 0 {
		t.Fatalf("expected 400 without service call, got %d calls=%d", rr.Code, stub.calls)
	}
}

func TestStoreCreditHandler_Balance(t *testing.T) {
	h := NewStoreCreditHandler(&stubCredits{credit: &models.StoreCredit{UserID: "u1", Balance: 12.5}}, nil, newTestLogger())

	rr := httptest.NewRecorder()
	h.Balance(rr, httptest.NewRequest(http.MethodGet, "/api/user/store-credit?userId=u1", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestStoreCreditHandler_Issue(t *testing.T) {
	producer := &recordingProducer{}
	h := NewStoreCreditHandler(&stubCredits{credit: &models.StoreCredit{UserID: "u1", Balance: 20}}, producer, newTestLogger())

	body := bytes.NewBufferString(`{"user_id":"u1","amount":20,"source":"refund"}`)
	rr := httptest.NewRecorder()
	h.Issue(rr, httptest.NewRequest(http.MethodPost, "/api/admin/store-credit", body))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if got := producer.types(); len(got) != 1 || got[0] != models.EventTypeStoreCreditIssued {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestStoreCreditHandler_Issue_PublishFailureIgnored(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker down")}
	h := NewStoreCreditHandler(&stubCredits{credit: &models.StoreCredit{UserID: "u1", Balance: 20}}, producer, newTestLogger())

	body := bytes.NewBufferString(`{"user_id":"u1","amount":20,"source":"return"}`)
	rr := httptest.NewRecorder()
	h.Issue(rr, httptest.NewRequest(http.MethodPost, "/api/admin/store-credit", body))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 despite publish failure, got %d", rr.Code)
	}
}

func TestStoreCreditHandler_Issue_InvalidSource(t *testing.T) {
	h := NewStoreCreditHandler(&stubCredits{err: apperror.Validation(`unknown credit source "gift"`, nil)}, nil, newTestLogger())

	body := bytes.NewBufferString(`{"user_id":"u1","amount":20,"source":"gift"}`)
	rr := httptest.NewRecorder()
	h.Issue(rr, httptest.NewRequest(http.MethodPost, "/api/admin/store-credit", body))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestStoreCreditHandler_Spend(t *testing.T) {
	stub := &stubCredits{balance: 12.75}
	h := NewStoreCreditHandler(stub, nil, newTestLogger())

	body := bytes.NewBufferString(`{"user_id":"u1","amount":7.25}`)
	rr := httptest.NewRecorder()
	h.Spend(rr, httptest.NewRequest(http.MethodPost, "/api/admin/store-credit/spend", body))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if stub.spent != 7.25 {
		t.Fatalf("unexpected amount spent: %v", stub.spent)
	}
	var resp models.StoreCredit
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.UserID != "u1" || resp.Balance != 12.75 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestStoreCreditHandler_Spend_Errors(t *testing.T) {
	stub := &stubCredits{}
	h := NewStoreCreditHandler(stub, nil, newTestLogger())
	rr := httptest.NewRecorder()
	h.Spend(rr, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"amount":5}`)))
	if rr.Code != http.StatusBadRequest || stub.calls != 0 {
		t.Fatalf("expected 400 without service call, got %d calls=%d", rr.Code, stub.calls)
	}

	h = NewStoreCreditHandler(&stubCredits{err: apperror.Conflict("insufficient store credit", nil)}, nil, newTestLogger())
	rr = httptest.NewRecorder()
	h.Spend(rr, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"user_id":"u1","amount":500}`)))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}
