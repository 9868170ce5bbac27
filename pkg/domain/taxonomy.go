package domain

import "fmt"

// SafetyPriority identifies a safety/justice concern a traveler wants
// itineraries and matches optimized for. The value is a stable identifier,
// safe to persist; the human-readable form comes from Label.
type SafetyPriority string

// closed set of safety priorities
const (
	PrioritySoloFemale         SafetyPriority = "solo_female"
	PriorityAccessibility      SafetyPriority = "accessibility"
	PriorityMinoritySupport    SafetyPriority = "minority_support"
	PriorityReligiousInclusive SafetyPriority = "religious_inclusive"
	PriorityNeurodivergent     SafetyPriority = "neurodivergent"
)

var priorityLabels = map[SafetyPriority]string{
	PrioritySoloFemale:         "Solo Female Safety",
	PriorityAccessibility:      "Accessible Travel (Mobility)",
	PriorityMinoritySupport:    "Minority Community Support",
	PriorityReligiousInclusive: "Religious Inclusivity",
	PriorityNeurodivergent:     "Neurodivergent Friendly",
}

// SafetyPriorities returns all priorities in stable display order.
func SafetyPriorities() []SafetyPriority {
	return []SafetyPriority{
		PrioritySoloFemale,
		PriorityAccessibility,
		PriorityMinoritySupport,
		PriorityReligiousInclusive,
		PriorityNeurodivergent,
	}
}

// Label returns the display form of the priority, or the raw value if unknown.
func (p SafetyPriority) Label() string {
	if l, ok := priorityLabels[p]; ok {
		return l
	}
	return string(p)
}

// Valid reports whether the priority is a member of the closed set.
func (p SafetyPriority) Valid() bool {
	_, ok := priorityLabels[p]
	return ok
}

// ParseSafetyPriority resolves an identifier or display label to a priority.
func ParseSafetyPriority(s string) (SafetyPriority, error) {
	if p := SafetyPriority(s); p.Valid() {
		return p, nil
	}
	for p, label := range priorityLabels {
		if label == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown safety priority %q", s)
}

// CommunityStyle identifies a self-described social interaction preference.
type CommunityStyle string

// closed set of community styles
const (
	StyleQuietObserver    CommunityStyle = "quiet_observer"
	StyleActiveAdvocate   CommunityStyle = "active_advocate"
	StyleCommunityBuilder CommunityStyle = "community_builder"
	StyleCultureSeeker    CommunityStyle = "culture_seeker"
)

var styleLabels = map[CommunityStyle]string{
	StyleQuietObserver:    "Quiet Observer",
	StyleActiveAdvocate:   "Active Advocate",
	StyleCommunityBuilder: "Community Builder",
	StyleCultureSeeker:    "Culture Seeker",
}

// CommunityStyles returns all styles in stable display order.
func CommunityStyles() []CommunityStyle {
	return []CommunityStyle{StyleQuietObserver, StyleActiveAdvocate, StyleCommunityBuilder, StyleCultureSeeker}
}

// Label returns the display form of the style, or the raw value if unknown.
func (s CommunityStyle) Label() string {
	if l, ok := styleLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valid reports whether the style is a member of the closed set.
func (s CommunityStyle) Valid() bool {
	_, ok := styleLabels[s]
	return ok
}

// ParseCommunityStyle resolves an identifier or display label to a style.
func ParseCommunityStyle(v string) (CommunityStyle, error) {
	if s := CommunityStyle(v); s.Valid() {
		return s, nil
	}
	for s, label := range styleLabels {
		if label == v {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown community style %q", v)
}

// ItineraryType identifies a travel style for itinerary generation.
// TypeCustom is a placeholder for a caller-supplied free-text style and is
// never a legal member of a multi-select alongside other types.
type ItineraryType string

// closed set of itinerary types
const (
	TypeTrekking          ItineraryType = "trekking"
	TypeSightseeing       ItineraryType = "sightseeing"
	TypeFoodExploration   ItineraryType = "food_exploration"
	TypeCulturalImmersion ItineraryType = "cultural_immersion"
	TypeAdventureSports   ItineraryType = "adventure_sports"
	TypeRelaxation        ItineraryType = "relaxation"
	TypeCustom            ItineraryType = "custom"
)

var typeLabels = map[ItineraryType]string{
	TypeTrekking:          "Trekking & Hiking",
	TypeSightseeing:       "Sightseeing & Landmarks",
	TypeFoodExploration:   "Food Exploration",
	TypeCulturalImmersion: "Cultural Immersion",
	TypeAdventureSports:   "Adventure Sports",
	TypeRelaxation:        "Relaxation & Wellness",
	TypeCustom:            "Custom",
}

// ItineraryTypes returns all selectable types in stable display order,
// excluding TypeCustom.
func ItineraryTypes() []ItineraryType {
	return []ItineraryType{
		TypeTrekking,
		TypeSightseeing,
		TypeFoodExploration,
		TypeCulturalImmersion,
		TypeAdventureSports,
		TypeRelaxation,
	}
}

// Label returns the display form of the type, or the raw value if unknown.
func (t ItineraryType) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Valid reports whether the type is a member of the closed set.
func (t ItineraryType) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// ParseItineraryType resolves an identifier or display label to a type.
func ParseItineraryType(v string) (ItineraryType, error) {
	if t := ItineraryType(v); t.Valid() {
		return t, nil
	}
	for t, label := range typeLabels {
		if label == v {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown itinerary type %q", v)
}
