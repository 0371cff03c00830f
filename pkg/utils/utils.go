package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// MaxVideoSize is the largest video Rekognition accepts from S3, exclusive.
const MaxVideoSize int64 = 10 * 1024 * 1024 * 1024

var AllowedVideoExtensions = []string{"mp4", "mov"}

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateVideoFile(file *multipart.FileHeader) error
}

type utils struct {
	maxFileSize int64
}

func New() IUtils {
	return &utils{
		maxFileSize: MaxVideoSize,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateVideoFile(file *multipart.FileHeader) error {
	if file == nil {
		return errors.New("no file uploaded")
	}

	return validateVideo(file.Filename, file.Size, u.maxFileSize)
}

// VideoValidationError explains why a video cannot be submitted for face detection.
type VideoValidationError struct {
	Filename string
	Size     int64
	Reason   string
}

func (e *VideoValidationError) Error() string {
	return fmt.Sprintf("video %q rejected: %s", e.Filename, e.Reason)
}

// VideoExtension returns the text after the last dot, or the whole name when there is none.
func VideoExtension(filename string) string {
	return filename[strings.LastIndex(filename, ".")+1:]
}

func IsAllowedVideoExtension(ext string) bool {
	for _, allowed := range AllowedVideoExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func ValidateVideo(filename string, size int64) error {
	return validateVideo(filename, size, MaxVideoSize)
}

func CheckFormatAndSize(filename string, size int64) bool {
	return ValidateVideo(filename, size) == nil
}

func validateVideo(filename string, size, maxSize int64) error {
	ext := VideoExtension(filename)
	if !IsAllowedVideoExtension(ext) {
		return &VideoValidationError{
			Filename: filename,
			Size:     size,
			Reason:   fmt.Sprintf("unsupported extension %q, expected one of %s", ext, strings.Join(AllowedVideoExtensions, ", ")),
		}
	}

	if size >= maxSize {
		return &VideoValidationError{
			Filename: filename,
			Size:     size,
			Reason:   fmt.Sprintf("size %d bytes must be below %d bytes", size, maxSize),
		}
	}

	return nil
}
