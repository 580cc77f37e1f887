package ingestion

import "errors"

var (
	// ErrRepositoryRequired is returned when an audio repository is not provided.
	ErrRepositoryRequired = errors.New("audio repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrProberRequired is returned when a duration prober is not provided.
	ErrProberRequired = errors.New("duration prober required")
)
