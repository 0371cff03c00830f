package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	detectionService "FaceBlur/internal/api/detection/service"
)

const (
	defaultPollTimeout = 2 * time.Hour
	defaultCacheTTL    = 24 * time.Hour
)

// NewDetectionConfig reads the polling and caching knobs from the environment.
func NewDetectionConfig() (detectionService.Config, error) {
	interval, err := durationFromEnv("REKOGNITION_POLL_INTERVAL", detectionService.DefaultPollInterval)
	if err != nil {
		return detectionService.Config{}, err
	}

	timeout, err := durationFromEnv("REKOGNITION_POLL_TIMEOUT", defaultPollTimeout)
	if err != nil {
		return detectionService.Config{}, err
	}

	maxAttempts, err := intFromEnv("REKOGNITION_POLL_MAX_ATTEMPTS", 0)
	if err != nil {
		return detectionService.Config{}, err
	}

	cacheTTL, err := durationFromEnv("FACE_INDEX_CACHE_TTL", defaultCacheTTL)
	if err != nil {
		return detectionService.Config{}, err
	}

	processTimeout, err := durationFromEnv("FACE_JOB_PROCESS_TIMEOUT", 0)
	if err != nil {
		return detectionService.Config{}, err
	}

	return detectionService.Config{
		Waiter: detectionService.WaiterConfig{
			PollInterval: interval,
			MaxAttempts:  maxAttempts,
			Timeout:      timeout,
		},
		CacheTTL:       cacheTTL,
		ProcessTimeout: processTimeout,
	}, nil
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return n, nil
}
