package domain

import "time"

// UserProfile represents one traveler. Priorities have set semantics: order
// is irrelevant and values are unique. Ownership and persistence belong to
// the profile store; this is the in-memory shape the rest of the code works
// with.
type UserProfile struct {
	ID                      string           `json:"id"`
	UserID                  string           `json:"user_id,omitempty"`
	Email                   string           `json:"email,omitempty"`
	Name                    string           `json:"name"`
	Avatar                  string           `json:"avatar"`
	Location                string           `json:"location"`
	Bio                     string           `json:"bio"`
	Priorities              []SafetyPriority `json:"priorities"`
	Style                   CommunityStyle   `json:"style"`
	PreferredItineraryTypes []ItineraryType  `json:"preferred_itinerary_types,omitempty"`
	CreatedAt               time.Time        `json:"created_at,omitzero"`
	UpdatedAt               time.Time        `json:"updated_at,omitzero"`
}

// HasPriority reports whether the profile declares the given priority.
func (p *UserProfile) HasPriority(pr SafetyPriority) bool {
	for _, have := range p.Priorities {
		if have == pr {
			return true
		}
	}
	return false
}

// PrimaryPriority returns the first declared priority, used as the
// connection context when a profile has several.
func (p *UserProfile) PrimaryPriority() (SafetyPriority, bool) {
	if len(p.Priorities) == 0 {
		return "", false
	}
	return p.Priorities[0], true
}

// ProfileUpdate is a partial profile change. Nil pointer fields and nil
// slices are left untouched by the store.
type ProfileUpdate struct {
	Name                    *string          `json:"name,omitempty"`
	Avatar                  *string          `json:"avatar,omitempty"`
	Location                *string          `json:"location,omitempty"`
	Bio                     *string          `json:"bio,omitempty"`
	Priorities              []SafetyPriority `json:"priorities,omitempty"`
	Style                   *CommunityStyle  `json:"style,omitempty"`
	PreferredItineraryTypes []ItineraryType  `json:"preferred_itinerary_types,omitempty"`
}
