package domain

// GroundingSource is a link returned alongside generated text to support
// transparency claims.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// ItineraryResult is the output of an itinerary generation request:
// markdown narrative plus the ordered grounding sources backing it.
type ItineraryResult struct {
	Markdown string            `json:"markdown"`
	Sources  []GroundingSource `json:"sources"`
}

// IcebreakerResult is a single generated greeting.
type IcebreakerResult struct {
	Message string `json:"message"`
}
