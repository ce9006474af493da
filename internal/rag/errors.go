package rag

import "errors"

var (
	// ErrEmptyQuestion is returned for a blank question.
	ErrEmptyQuestion = errors.New("question cannot be empty")
	// ErrIndexUnavailable is returned when no index handle could be produced. The cause
	// (empty corpus, ingestion failure, provider failure) is wrapped alongside it.
	ErrIndexUnavailable = errors.New("index unavailable")
)
