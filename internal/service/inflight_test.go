package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/frenillazo/acainfo-portal-api/pkg/errors"
)

func TestInflightGuardRejectsDuplicate(t *testing.T) {
	guard := NewInflightGuard()

	release, err := guard.Acquire("stu-1", "reservation.create", "ses-1")
	require.NoError(t, err)

	_, err = guard.Acquire("stu-1", "reservation.create", "ses-1")
	assert.ErrorIs(t, err, appErrors.ErrOperationInFlight)

	release()

	release2, err := guard.Acquire("stu-1", "reservation.create", "ses-1")
	require.NoError(t, err)
	release2()
}

func TestInflightGuardScopesByEntity(t *testing.T) {
	guard := NewInflightGuard()

	release1, err := guard.Acquire("stu-1", "reservation.cancel", "res-1")
	require.NoError(t, err)
	defer release1()

	// Same action on a different entity never serializes.
	release2, err := guard.Acquire("stu-1", "reservation.cancel", "res-2")
	require.NoError(t, err)
	defer release2()

	// Another actor on the same entity is also independent.
	release3, err := guard.Acquire("stu-2", "reservation.cancel", "res-1")
	require.NoError(t, err)
	defer release3()
}

func TestInflightGuardReleaseIsIdempotent(t *testing.T) {
	guard := NewInflightGuard()

	release, err := guard.Acquire("stu-1", "reservation.switch", "res-1")
	require.NoError(t, err)

	release()
	release()

	again, err := guard.Acquire("stu-1", "reservation.switch", "res-1")
	require.NoError(t, err)
	again()
}
