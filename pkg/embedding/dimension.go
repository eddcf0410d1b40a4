package embedding

import (
	"context"
	"fmt"

	"edushelf-be/internal/apperror"
)

// CheckDimension fails when a provider returned a vector of the wrong length.
func CheckDimension(values []float32, dimension int) error {
	if len(values) != dimension {
		return fmt.Errorf("got %d values, want %d: %w", len(values), dimension, apperror.ErrDimensionMismatch)
	}
	return nil
}

// ValidateDimension probes the provider once so a misconfigured model fails at
// startup instead of on the first upload.
func ValidateDimension(ctx context.Context, p EmbeddingProvider, dimension int) error {
	resp, err := p.Generate(ctx, "dimension probe", TaskRetrievalQuery)
	if err != nil {
		return apperror.Provider("embedding probe failed", err)
	}
	return CheckDimension(resp.Embedding.Values, dimension)
}
