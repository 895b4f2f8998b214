package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"serrano/api/internal/apperr"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		kind   apperr.Kind
		status int
	}{
		{apperr.KindUnauthenticated, http.StatusUnauthorized},
		{apperr.KindForbidden, http.StatusForbidden},
		{apperr.KindConflict, http.StatusConflict},
		{apperr.KindNotFound, http.StatusNotFound},
		{apperr.KindValidation, http.StatusBadRequest},
		{apperr.KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, apperr.Status(apperr.New(tc.kind, "x")))
	}

	assert.Equal(t, http.StatusInternalServerError, apperr.Status(errors.New("untagged")))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := apperr.New(apperr.KindConflict, "email taken")
	outer := fmt.Errorf("register shop: %w", inner)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(outer))
	assert.Equal(t, "email taken", apperr.Message(outer))
}

func TestMessageHidesInternals(t *testing.T) {
	err := apperr.Wrap(apperr.KindInternal, "scan row", errors.New("pq: column does not exist"))
	assert.Equal(t, "internal server error", apperr.Message(err))
	assert.Contains(t, err.Error(), "scan row")
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := apperr.Wrap(apperr.KindInternal, "wrapped", cause)
	assert.ErrorIs(t, err, cause)
}
