package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrDocumentNotFound signals a missing document record.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrIndexUnavailable signals a document with no vector collection behind it.
	// Ranking treats it as "skip this candidate", never as a hard failure.
	ErrIndexUnavailable = errors.New("index unavailable")
	// ErrNoCandidates signals that every candidate document was unavailable or
	// errored. This is the only ranking failure surfaced to callers.
	ErrNoCandidates = errors.New("no candidates available")
	// ErrExtractionFailed signals that the structured-criteria completion call
	// produced nothing usable. Recovered internally by fallback strategies.
	ErrExtractionFailed = errors.New("criteria extraction failed")
	// ErrCompletionProviderError signals a completion provider failure.
	ErrCompletionProviderError = errors.New("completion provider error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
