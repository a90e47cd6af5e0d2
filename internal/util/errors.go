package util

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailRegistered = errors.New("email already registered")

	// ErrInvalidProfile is returned when a submitted profile has duplicate
	// subject names or a level outside [1,10].
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrNoActiveRecord is returned by record mutations that require an
	// onboarded learner (after reset, or before onboarding completes).
	ErrNoActiveRecord = errors.New("no active student record")

	ErrStorageDisabled = errors.New("object storage not configured")
)
