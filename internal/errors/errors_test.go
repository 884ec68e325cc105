package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusCodes(t *testing.T) {
	cause := fmt.Errorf("boom")
	tests := []struct {
		err  *AppError
		want int
	}{
		{NoData(cause), http.StatusNotFound},
		{ValidationWrap(cause, "bad"), http.StatusBadRequest},
		{BadRequest("bad"), http.StatusBadRequest},
		{UnprocessableWrap(cause, "nope"), http.StatusUnprocessableEntity},
		{RateLimit("slow down"), http.StatusTooManyRequests},
		{ServiceUnavailable("later"), http.StatusServiceUnavailable},
		{InternalWrap(cause, "oops"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if tt.err.StatusCode != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.err.Code, tt.err.StatusCode, tt.want)
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	sentinel := stderrors.New("sentinel")
	err := error(UnprocessableWrap(fmt.Errorf("ctx: %w", sentinel), "cannot"))
	if !stderrors.Is(err, sentinel) {
		t.Error("wrapped AppError should unwrap to its cause")
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, slog.New(slog.DiscardHandler), NoData(stderrors.New("empty")), "req-1")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success || resp.Error.Code != string(CodeNoData) || resp.Error.RequestID != "req-1" {
		t.Errorf("unexpected envelope %+v", resp)
	}
}

func TestWriteError_PlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, slog.New(slog.DiscardHandler), stderrors.New("raw"), "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
