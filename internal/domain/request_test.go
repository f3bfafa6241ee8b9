package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    RequestStatus
		to      RequestStatus
		allowed bool
	}{
		{StatusSubmitted, StatusInProgress, true},
		{StatusInProgress, StatusResolved, true},
		{StatusSubmitted, StatusResolved, false},
		{StatusInProgress, StatusSubmitted, false},
		{StatusResolved, StatusInProgress, false},
		{StatusResolved, StatusSubmitted, false},
		{StatusSubmitted, StatusSubmitted, false},
		{StatusResolved, StatusResolved, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestNextStatuses(t *testing.T) {
	assert.Equal(t, []RequestStatus{StatusInProgress}, NextStatuses(StatusSubmitted))
	assert.Equal(t, []RequestStatus{StatusResolved}, NextStatuses(StatusInProgress))
	assert.Empty(t, NextStatuses(StatusResolved))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusSubmitted))
	assert.True(t, ValidStatus(StatusInProgress))
	assert.True(t, ValidStatus(StatusResolved))
	assert.False(t, ValidStatus("CLOSED"))
	assert.False(t, ValidStatus(""))
}

func TestValidPriority(t *testing.T) {
	for _, p := range []RequestPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical} {
		assert.True(t, ValidPriority(p))
	}
	assert.False(t, ValidPriority("URGENT"))
	assert.False(t, ValidPriority(""))
}

func TestIsResolved(t *testing.T) {
	request := &ServiceRequest{Status: StatusInProgress}
	assert.False(t, request.IsResolved())
	request.Status = StatusResolved
	assert.True(t, request.IsResolved())
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	var none *User
	assert.False(t, none.IsAdmin())
}

func TestValidRating(t *testing.T) {
	for rating := MinRating; rating <= MaxRating; rating++ {
		assert.True(t, ValidRating(rating))
	}
	assert.False(t, ValidRating(0))
	assert.False(t, ValidRating(6))
	assert.False(t, ValidRating(-3))
}
