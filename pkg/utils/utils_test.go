package utils

import (
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
)

const gib int64 = 1024 * 1024 * 1024

func TestCheckFormatAndSize(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		want     bool
	}{
		{name: "mp4 under limit", filename: "clip.mp4", size: 5 * gib, want: true},
		{name: "mov under limit", filename: "holiday.final.mov", size: 1, want: true},
		{name: "avi rejected", filename: "clip.avi", size: 1, want: false},
		{name: "avi rejected at any size", filename: "clip.avi", size: 0, want: false},
		{name: "mp4 over limit", filename: "clip.mp4", size: 11 * gib, want: false},
		{name: "exactly at limit", filename: "clip.mp4", size: 10 * gib, want: false},
		{name: "one byte under limit", filename: "clip.mp4", size: 10*gib - 1, want: true},
		{name: "extension is case sensitive", filename: "clip.MP4", size: 1, want: false},
		{name: "no extension", filename: "mp4", size: 1, want: true},
		{name: "trailing dot", filename: "clip.", size: 1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckFormatAndSize(tt.filename, tt.size); got != tt.want {
				t.Errorf("CheckFormatAndSize(%q, %d) = %v, want %v", tt.filename, tt.size, got, tt.want)
			}
		})
	}
}

func TestValidateVideoReason(t *testing.T) {
	err := ValidateVideo("clip.avi", 10)

	var verr *VideoValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *VideoValidationError, got %T (%v)", err, err)
	}
	if verr.Filename != "clip.avi" || verr.Size != 10 {
		t.Errorf("unexpected error fields: %+v", verr)
	}
	if verr.Reason == "" {
		t.Error("expected a reason")
	}
}

func TestValidateVideoFile(t *testing.T) {
	u := New()

	if err := u.ValidateVideoFile(nil); err == nil {
		t.Error("expected error for missing file")
	}

	file := &multipart.FileHeader{Filename: "clip.mov", Size: 1024}
	if err := u.ValidateVideoFile(file); err != nil {
		t.Errorf("ValidateVideoFile() = %v, want nil", err)
	}

	file = &multipart.FileHeader{Filename: "clip.mkv", Size: 1024}
	if err := u.ValidateVideoFile(file); err == nil {
		t.Error("expected error for mkv upload")
	}
}

func TestNewULIDFromTimestamp(t *testing.T) {
	u := New()
	now := time.Now()

	a, err := u.NewULIDFromTimestamp(now)
	if err != nil {
		t.Fatal(err)
	}
	b, err := u.NewULIDFromTimestamp(now)
	if err != nil {
		t.Fatal(err)
	}

	if len(a) != 26 {
		t.Errorf("ULID length = %d, want 26", len(a))
	}
	if a == b {
		t.Error("expected distinct ULIDs")
	}
}

func TestRegisterVideoValidation(t *testing.T) {
	v := validator.New()
	if err := RegisterVideoValidation(v); err != nil {
		t.Fatal(err)
	}

	type request struct {
		Key string `validate:"required,videoformat"`
	}

	if err := v.Struct(request{Key: "uploads/clip.mov"}); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
	if err := v.Struct(request{Key: "uploads/clip.avi"}); err == nil {
		t.Error("avi key accepted")
	}
}
