package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, MapErrorToStatus(Validation("bad field")))
	assert.Equal(t, http.StatusBadRequest, MapErrorToStatus(Auth("login first")))
	assert.Equal(t, http.StatusForbidden, MapErrorToStatus(Forbidden("no")))
	assert.Equal(t, http.StatusNotFound, MapErrorToStatus(NotFound("gone")))
	assert.Equal(t, http.StatusInternalServerError, MapErrorToStatus(Upstream(errors.New("boom"))))
	assert.Equal(t, http.StatusInternalServerError, MapErrorToStatus(errors.New("untyped")))
}

func TestUnwrapKeepsTaxonomy(t *testing.T) {
	err := Validation("bad field")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "bad field", err.Error())

	cause := errors.New("socket closed")
	wrapped := Upstream(cause)
	assert.ErrorIs(t, wrapped, ErrUpstream)
	assert.ErrorIs(t, wrapped, cause)
}
