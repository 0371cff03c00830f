package response

import (
	"errors"
	"net/http"
	"testing"
)

func TestDetailKeepsIdentity(t *testing.T) {
	sentinel := NewError(http.StatusBadRequest, "invalid video")

	err := Detail(sentinel, "unsupported extension \"avi\"")

	if !errors.Is(err, sentinel) {
		t.Fatalf("errors.Is(%v, sentinel) = false, want true", err)
	}

	var respErr *Error
	if !errors.As(err, &respErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if respErr.Code != http.StatusBadRequest {
		t.Errorf("Code = %d, want %d", respErr.Code, http.StatusBadRequest)
	}
	if want := "invalid video: unsupported extension \"avi\""; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsComparesCodeAndMessage(t *testing.T) {
	a := NewError(http.StatusNotFound, "job not found")
	b := NewError(http.StatusNotFound, "job not found")
	c := NewError(http.StatusConflict, "job not found")

	if !errors.Is(a, b) {
		t.Error("errors with same code and message should match")
	}
	if errors.Is(a, c) {
		t.Error("errors with different codes should not match")
	}
}

func TestDetailOnPlainError(t *testing.T) {
	plain := errors.New("boom")
	err := Detail(plain, "context")
	if !errors.Is(err, plain) {
		t.Error("plain sentinel should still match")
	}
}
