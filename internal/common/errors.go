// Package common defines shared sentinel errors used across the bot's
// components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Query validation errors.
	ErrorEmptyQuery = errors.New("empty query")

	// Delivery-specific errors.
	ErrorUnsupportedKind = errors.New("unsupported file kind")
	ErrorRateLimited     = errors.New("rate limited")
)
