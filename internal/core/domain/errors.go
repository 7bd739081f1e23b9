package domain

import "errors"

// Domain errors represent pipeline failures.
// These are distinct from infrastructure errors, which adapters wrap with context.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyInput indicates the input table holds no usable papers.
	ErrEmptyInput = errors.New("no papers with a title")

	// ErrUnsupportedAlgorithm indicates an unknown reduction algorithm name.
	ErrUnsupportedAlgorithm = errors.New("unsupported reduction algorithm")

	// ErrUnsupportedProvider indicates an unknown embedding provider name.
	ErrUnsupportedProvider = errors.New("unsupported embedding provider")

	// ErrLengthMismatch indicates papers and coordinates are not aligned.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrDimensionMismatch indicates embedding vectors of differing width in one run.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInsufficientData indicates too few vectors for a reduction to be meaningful.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrEmbeddingUnavailable indicates the embedding model could not be reached or loaded.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
