package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPilotError_Format(t *testing.T) {
	err := NewError(FLIGHT_NOT_READY, "vehicle not ready")
	assert.Equal(t, "[FLIGHT_NOT_READY] vehicle not ready", err.Error())

	wrapped := WrapError(FLIGHT_COMMAND_FAILED, "takeoff failed", errors.New("motor fault"))
	assert.Equal(t, "[FLIGHT_COMMAND_FAILED] takeoff failed: motor fault", wrapped.Error())
}

func TestPilotError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(FLIGHT_CONNECT_FAILED, "connect", cause)

	assert.ErrorIs(t, err, cause)
}

func TestPilotError_IsMatchesByCode(t *testing.T) {
	a := NewError(MISSION_NOT_PENDING, "no such pending mission")
	b := NewError(MISSION_NOT_PENDING, "different message, same code")
	c := NewError(MISSION_INVALID, "other code")

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, c)
	assert.NotErrorIs(t, a, errors.New("plain"))
}

func TestPilotError_IsThroughWrapping(t *testing.T) {
	sentinel := NewError(MISSION_NOT_PENDING, "no such pending mission")
	wrapped := WrapError(MISSION_GENERATION_FAILED, "outer", sentinel)

	assert.ErrorIs(t, wrapped, sentinel)
}

func TestRetryable(t *testing.T) {
	assert.False(t, NewError(LLM_COMPLETION_FAILED, "x").Retryable)
	assert.True(t, NewRetryableError(LLM_COMPLETION_FAILED, "x").Retryable)
}
