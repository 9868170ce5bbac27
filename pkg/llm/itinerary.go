package llm

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/safepassage/safepassage/pkg/domain"
)

// FailurePolicy defines what a builder does when the generation call fails.
// The itinerary builder propagates so the caller can surface a retry prompt;
// the icebreaker builder substitutes a deterministic fallback message.
type FailurePolicy int

// failure policies
const (
	Propagate FailurePolicy = iota
	Fallback
)

// noItineraryFallback is returned verbatim when the provider yields empty text
const noItineraryFallback = "No itinerary generated."

// allowedDays is the closed set of accepted trip durations
var allowedDays = map[int]struct{}{1: {}, 2: {}, 3: {}, 5: {}, 7: {}}

// ItineraryRequest describes one itinerary generation request. Style is the
// display form of the travel style: either the joined labels of the selected
// itinerary types or a single free-text override for the custom type.
type ItineraryRequest struct {
	Destination string
	Priorities  []domain.SafetyPriority
	Days        int
	Style       string
}

// Policy returns the failure policy of the itinerary builder.
func (r *ItineraryRequest) Policy() FailurePolicy { return Propagate }

// Validate checks the request before any provider call is made.
func (r *ItineraryRequest) Validate() error {
	if strings.TrimSpace(r.Destination) == "" {
		return domain.NewError(domain.KindValidation, "destination is required")
	}
	if len(r.Priorities) == 0 {
		return domain.NewError(domain.KindValidation, "at least one safety priority is required")
	}
	for _, p := range r.Priorities {
		if !p.Valid() {
			return domain.NewError(domain.KindValidation, "unknown safety priority %q", string(p))
		}
	}
	if _, ok := allowedDays[r.Days]; !ok {
		return domain.NewError(domain.KindValidation, "day count must be one of 1, 2, 3, 5 or 7")
	}
	return nil
}

// StyleFromTypes builds the display style string from selected itinerary
// types, or from the free-text custom value which overrides them. The custom
// placeholder type is rejected in the multi-select.
func StyleFromTypes(types []domain.ItineraryType, custom string) (string, error) {
	if custom = strings.TrimSpace(custom); custom != "" {
		return custom, nil
	}
	if len(types) == 0 {
		return "", domain.NewError(domain.KindValidation, "at least one itinerary type or a custom style is required")
	}
	labels := make([]string, 0, len(types))
	for _, t := range types {
		if t == domain.TypeCustom {
			return "", domain.NewError(domain.KindValidation, "custom type requires a free-text style instead of a selection")
		}
		if !t.Valid() {
			return "", domain.NewError(domain.KindValidation, "unknown itinerary type %q", string(t))
		}
		labels = append(labels, t.Label())
	}
	return strings.Join(labels, ", "), nil
}

// Prompt builds the natural-language instruction payload. All selected
// priorities appear verbatim in their full textual form; the accessibility
// clause is included only when accessibility is selected and the
// intersectional clause only when two or more priorities are selected.
func (r *ItineraryRequest) Prompt() string {
	labels := make([]string, 0, len(r.Priorities))
	for _, p := range r.Priorities {
		labels = append(labels, p.Label())
	}
	priorityText := strings.Join(labels, ", ")

	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a detailed %d-day travel itinerary for %s.\n\n", r.Days, r.Destination)
	fmt.Fprintf(&sb, "CRITICAL USER PRIORITIES: %s.\n", priorityText)
	fmt.Fprintf(&sb, "TRAVEL STYLE/TYPE: %s\n\n", r.Style)

	sb.WriteString("MANDATORY GUIDELINES (Responsible AI):\n")
	n := 1
	fmt.Fprintf(&sb, "%d. SAFETY FIRST: Filter recommendations through the lens of ALL these priorities: %s. "+
		"Identify well-lit areas, safe transport, and specific safety checks (e.g., locking mechanisms, neighborhood reputation).\n", n, priorityText)
	n++
	fmt.Fprintf(&sb, "%d. ETHICAL CONSUMPTION: Prioritize minority-owned, women-owned, or community-run businesses. "+
		"Avoid global chains unless they are the only safe option.\n", n)
	n++
	fmt.Fprintf(&sb, "%d. COUNTER BIAS: Explicitly avoid stereotypes. Base safety ratings on recent, factual reports.\n", n)
	n++
	if r.hasAccessibility() {
		fmt.Fprintf(&sb, "%d. ACCESSIBILITY: Ensure all recommended locations have ramp access and accessible restrooms.\n", n)
		n++
	}
	if len(r.Priorities) >= 2 {
		fmt.Fprintf(&sb, "%d. INTERSECTIONAL APPROACH: Consider how these priorities intersect and recommend places that address all of them together, "+
			"not each in isolation.\n", n)
		n++
	}
	fmt.Fprintf(&sb, "%d. TRAVEL STYLE: Tailor the itinerary to the specified travel style (%s). For example: "+
		"trekking/hiking focuses on trails and outdoor activities, food exploration highlights local eateries and markets, "+
		"cultural immersion emphasizes museums and cultural events, sightseeing includes major landmarks and viewpoints.\n\n", n, r.Style)

	sb.WriteString("FORMAT:\n")
	sb.WriteString("Return the response in clean Markdown.\n")
	fmt.Fprintf(&sb, "Start with a \"Safety & Ethics Briefing\" specific to %s and these priorities: %s.\n", r.Destination, priorityText)
	sb.WriteString("Then list Day 1, Day 2, etc.\n")
	fmt.Fprintf(&sb, "For each recommendation, explain why it is safe and ethical, how it addresses the selected priorities, "+
		"and how it aligns with the %s style.\n", r.Style)

	return sb.String()
}

func (r *ItineraryRequest) hasAccessibility() bool {
	for _, p := range r.Priorities {
		if p == domain.PriorityAccessibility {
			return true
		}
	}
	return false
}

// Itinerary generates a vetted itinerary in one attempt. Generation failures
// propagate to the caller per the builder's failure policy.
func (c *Client) Itinerary(ctx context.Context, req ItineraryRequest) (*domain.ItineraryResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	text, sources, err := c.Generate(ctx, req.Prompt(), Options{
		Grounding:   true,
		Temperature: float32(c.cfg.ItineraryTemperature),
	})
	if err != nil {
		return nil, err
	}

	return parseItinerary(text, sources), nil
}

// parseItinerary shapes the raw generation output into a display-ready
// result: verbatim text with a literal fallback when empty, and sources
// deduplicated by URI with the original order preserved. An entry without a
// resolvable link is skipped; a missing title derives from the link's host.
func parseItinerary(text string, sources []domain.GroundingSource) *domain.ItineraryResult {
	markdown := strings.TrimSpace(text)
	if markdown == "" {
		markdown = noItineraryFallback
	}

	seen := make(map[string]struct{}, len(sources))
	cleaned := []domain.GroundingSource{}
	for _, src := range sources {
		if src.URI == "" {
			continue
		}
		if _, dup := seen[src.URI]; dup {
			continue
		}
		seen[src.URI] = struct{}{}

		title := src.Title
		if title == "" {
			if u, err := url.Parse(src.URI); err == nil && u.Hostname() != "" {
				title = u.Hostname()
			} else {
				title = src.URI
			}
		}
		cleaned = append(cleaned, domain.GroundingSource{Title: title, URI: src.URI})
	}

	return &domain.ItineraryResult{Markdown: markdown, Sources: cleaned}
}
