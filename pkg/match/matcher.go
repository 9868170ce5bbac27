// Package match implements the traveler directory filter and the small
// search flow state machine driving it.
package match

import (
	"github.com/safepassage/safepassage/pkg/domain"
)

// Filter returns the candidates matching the selection, preserving the
// original relative order. A candidate matches when its priority set
// intersects the selected priorities OR its community style is one of the
// selected styles. The permissive OR favors discoverability over precision.
//
// The function is pure: it never mutates its inputs and never returns a
// candidate not present in them. An empty result is a valid outcome. The
// caller is responsible for rejecting an empty priority selection before
// invoking the filter.
func Filter(candidates []domain.UserProfile, priorities []domain.SafetyPriority, styles []domain.CommunityStyle) []domain.UserProfile {
	selected := make(map[domain.SafetyPriority]struct{}, len(priorities))
	for _, p := range priorities {
		selected[p] = struct{}{}
	}
	styleSet := make(map[domain.CommunityStyle]struct{}, len(styles))
	for _, s := range styles {
		styleSet[s] = struct{}{}
	}

	result := []domain.UserProfile{}
	for _, c := range candidates {
		if matches(&c, selected, styleSet) {
			result = append(result, c)
		}
	}
	return result
}

func matches(c *domain.UserProfile, priorities map[domain.SafetyPriority]struct{}, styles map[domain.CommunityStyle]struct{}) bool {
	for _, p := range c.Priorities {
		if _, ok := priorities[p]; ok {
			return true
		}
	}
	_, ok := styles[c.Style]
	return ok
}
