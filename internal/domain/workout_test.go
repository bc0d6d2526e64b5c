package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from WorkoutStatus
		to   WorkoutStatus
		want bool
	}{
		{"start", StatusPlanned, StatusActive, true},
		{"complete", StatusActive, StatusCompleted, true},
		{"archive", StatusCompleted, StatusArchived, true},
		{"unarchive", StatusArchived, StatusCompleted, true},
		{"skip planned to completed", StatusPlanned, StatusCompleted, false},
		{"skip planned to archived", StatusPlanned, StatusArchived, false},
		{"reopen completed", StatusCompleted, StatusActive, false},
		{"restart active", StatusActive, StatusPlanned, false},
		{"archive active", StatusActive, StatusArchived, false},
		{"unarchive to active", StatusArchived, StatusActive, false},
		{"self planned", StatusPlanned, StatusPlanned, false},
		{"self archived", StatusArchived, StatusArchived, false},
		{"unknown from", WorkoutStatus("draft"), StatusActive, false},
		{"unknown to", StatusPlanned, WorkoutStatus("draft"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidWorkoutStatus(t *testing.T) {
	for _, s := range []WorkoutStatus{StatusPlanned, StatusActive, StatusCompleted, StatusArchived} {
		assert.True(t, ValidWorkoutStatus(s))
	}
	assert.False(t, ValidWorkoutStatus(WorkoutStatus("")))
	assert.False(t, ValidWorkoutStatus(WorkoutStatus("deleted")))
}
