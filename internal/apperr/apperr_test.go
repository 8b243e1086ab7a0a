package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatusAndCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, KindValidation.Status())
	assert.Equal(t, http.StatusUnauthorized, KindAuthentication.Status())
	assert.Equal(t, http.StatusForbidden, KindAuthorization.Status())
	assert.Equal(t, http.StatusNotFound, KindNotFound.Status())
	assert.Equal(t, http.StatusConflict, KindConflict.Status())
	assert.Equal(t, http.StatusGatewayTimeout, KindTimeout.Status())
	assert.Equal(t, "conflict", KindConflict.Code())
}

func TestInternalDetectsDeadline(t *testing.T) {
	err := Internal("load booking", fmt.Errorf("query: %w", context.DeadlineExceeded))
	assert.Equal(t, KindTimeout, err.Kind)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	err = Internal("load booking", errors.New("connection refused"))
	assert.Equal(t, KindInternal, err.Kind)
	assert.Equal(t, "internal server error", err.Message)
}

func TestKindOfWrapped(t *testing.T) {
	wrapped := fmt.Errorf("create: %w", Conflict("table %d is taken", 4))
	assert.True(t, Is(wrapped, KindConflict))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}
