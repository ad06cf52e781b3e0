package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/geocoder89/recipehub/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindValidation:     http.StatusBadRequest,
		apperr.KindAuthentication: http.StatusUnauthorized,
		apperr.KindAuthorization:  http.StatusForbidden,
		apperr.KindNotFound:       http.StatusNotFound,
		apperr.KindConflict:       http.StatusConflict,
		apperr.KindInternal:       http.StatusInternalServerError,
	}

	for kind, want := range cases {
		assert.Equal(t, want, kind.Status(), kind.String())
	}
}

func TestKindOf_WalksWrappedChain(t *testing.T) {
	base := errors.New("unique violation")
	err := fmt.Errorf("insert user: %w", apperr.E(apperr.KindConflict, "Email already registered", base))

	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.ErrorIs(t, err, base)
}

func TestKindOf_UnclassifiedIsInternal(t *testing.T) {
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(errors.New("boom")))
}
