package files

import "errors"

var (
	// ErrUnsupportedMediaType means the declared MIME type is outside the allow-list.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrPayloadTooLarge means the stream exceeded the configured maximum.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrInvalidInput covers missing or malformed upload fields.
	ErrInvalidInput = errors.New("invalid input")
)
