package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"sentinel", ErrSessionNotFound, KindNotFound},
		{"wrapped sentinel", fmt.Errorf("load: %w", ErrSessionForbidden), KindUnauthorized},
		{"constructed", E(KindParse, "bad json", errors.New("eof")), KindParse},
		{"plain error", errors.New("boom"), KindInternal},
		{"nil-like plain", fmt.Errorf("x"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorIsAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Provider("embedding request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "embedding request failed: connection refused", err.Error())

	wrapped := fmt.Errorf("index: %w", ErrUnsupportedFileType)
	assert.ErrorIs(t, wrapped, ErrUnsupportedFileType)
	assert.NotErrorIs(t, wrapped, ErrEmptyContent)
}
