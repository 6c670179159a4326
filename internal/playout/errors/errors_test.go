// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorsIsMatchesSentinelClass(t *testing.T) {
	err := NotFound("part1")
	require.True(t, errors.Is(err, ErrNotFound))
	require.False(t, errors.Is(err, ErrAlreadyExists))
}

func TestReasonOfRoundTrips(t *testing.T) {
	err := TakeCloseToAutonext()
	reason, ok := ReasonOf(err)
	require.True(t, ok)
	require.Equal(t, ReasonTakeCloseAutonext, reason)
}

func TestQueryFailedWraps(t *testing.T) {
	underlying := errors.New("connection reset")
	err := QueryFailed("parts", underlying)
	require.True(t, errors.Is(err, ErrQueryFailed))
	require.True(t, errors.Is(err, underlying))
}

func TestReasonOfUnknownError(t *testing.T) {
	_, ok := ReasonOf(errors.New("plain"))
	require.False(t, ok)
}
