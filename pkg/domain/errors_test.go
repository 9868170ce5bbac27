package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{"validation error", NewError(KindValidation, "destination is required"), KindValidation},
		{"wrapped generation error", WrapError(KindGeneration, cause, "llm request failed"), KindGeneration},
		{"classified error deeper in the chain", fmt.Errorf("search: %w", NewError(KindAuth, "invalid credentials")), KindAuth},
		{"plain error", cause, ErrorKind("")},
		{"nil", nil, ErrorKind("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("no such table: profiles")
	err := WrapError(KindStore, cause, "read profile")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "read profile: no such table: profiles", err.Error())
	assert.Equal(t, "read profile", err.Message, "user-facing message excludes the cause")
}

func TestUserProfile_PrimaryPriority(t *testing.T) {
	p := UserProfile{Priorities: []SafetyPriority{PriorityAccessibility, PrioritySoloFemale}}
	primary, ok := p.PrimaryPriority()
	assert.True(t, ok)
	assert.Equal(t, PriorityAccessibility, primary)

	empty := UserProfile{}
	_, ok = empty.PrimaryPriority()
	assert.False(t, ok)
}
