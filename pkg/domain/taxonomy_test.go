package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafetyPriority_Label(t *testing.T) {
	tests := []struct {
		name     string
		priority SafetyPriority
		expected string
	}{
		{"solo female", PrioritySoloFemale, "Solo Female Safety"},
		{"accessibility", PriorityAccessibility, "Accessible Travel (Mobility)"},
		{"minority support", PriorityMinoritySupport, "Minority Community Support"},
		{"religious inclusivity", PriorityReligiousInclusive, "Religious Inclusivity"},
		{"neurodivergent", PriorityNeurodivergent, "Neurodivergent Friendly"},
		{"unknown falls back to raw value", SafetyPriority("mystery"), "mystery"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.priority.Label())
		})
	}
}

func TestParseSafetyPriority(t *testing.T) {
	// stable identifier
	p, err := ParseSafetyPriority("solo_female")
	require.NoError(t, err)
	assert.Equal(t, PrioritySoloFemale, p)

	// display label resolves to the same identifier
	p, err = ParseSafetyPriority("Solo Female Safety")
	require.NoError(t, err)
	assert.Equal(t, PrioritySoloFemale, p)

	_, err = ParseSafetyPriority("not-a-priority")
	assert.Error(t, err)
}

func TestSafetyPriorities_AllValid(t *testing.T) {
	all := SafetyPriorities()
	require.Len(t, all, 5)
	for _, p := range all {
		assert.True(t, p.Valid(), "priority %s should be valid", p)
	}
}

func TestParseCommunityStyle(t *testing.T) {
	s, err := ParseCommunityStyle("Quiet Observer")
	require.NoError(t, err)
	assert.Equal(t, StyleQuietObserver, s)

	s, err = ParseCommunityStyle("culture_seeker")
	require.NoError(t, err)
	assert.Equal(t, StyleCultureSeeker, s)

	_, err = ParseCommunityStyle("")
	assert.Error(t, err)
}

func TestItineraryTypes_ExcludeCustom(t *testing.T) {
	for _, it := range ItineraryTypes() {
		assert.NotEqual(t, TypeCustom, it, "custom must not be selectable in the multi-select set")
		assert.True(t, it.Valid())
	}
	assert.True(t, TypeCustom.Valid(), "custom is still a member of the closed set")
}

func TestParseItineraryType(t *testing.T) {
	it, err := ParseItineraryType("Sightseeing & Landmarks")
	require.NoError(t, err)
	assert.Equal(t, TypeSightseeing, it)

	_, err = ParseItineraryType("Skydiving")
	assert.Error(t, err)
}
