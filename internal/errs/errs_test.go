package errs

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidationErrorUnwraps(t *testing.T) {
	err := pkgerrors.Wrap(Invalid("end_time", "must be after start_time"), "create")
	assert.True(t, errors.Is(err, ErrValidation))

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "end_time", ve.Field)
	assert.Equal(t, ErrValidation, Kind(err))
}

func TestConflictErrorListsIDs(t *testing.T) {
	err := fmt.Errorf("reschedule: %w", &ConflictError{ReservationIDs: []uint64{4, 9}})
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Contains(t, err.Error(), "4,9")
	assert.Equal(t, ErrConflict, Kind(err))
}

func TestKindUnclassified(t *testing.T) {
	assert.Nil(t, Kind(errors.New("boom")))
	assert.Equal(t, ErrNotFound, Kind(pkgerrors.Wrap(ErrNotFound, "get")))
}
