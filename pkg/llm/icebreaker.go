package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/safepassage/safepassage/pkg/domain"
)

// emptyIcebreakerFallback covers the case of a successful call with no text
const emptyIcebreakerFallback = "Hi! Let's connect safely."

// IcebreakerRequest describes one icebreaker generation request. Priority is
// the requester's primary selection; Location is the requester's current or
// planned location.
type IcebreakerRequest struct {
	RecipientName string
	Priority      domain.SafetyPriority
	Location      string
}

// Policy returns the failure policy of the icebreaker builder.
func (r *IcebreakerRequest) Policy() FailurePolicy { return Fallback }

// Validate checks the request before any provider call is made.
func (r *IcebreakerRequest) Validate() error {
	if strings.TrimSpace(r.RecipientName) == "" {
		return domain.NewError(domain.KindValidation, "recipient name is required")
	}
	if !r.Priority.Valid() {
		return domain.NewError(domain.KindValidation, "unknown safety priority %q", string(r.Priority))
	}
	return nil
}

// Prompt builds the short-form instruction for a sub-50-word greeting.
func (r *IcebreakerRequest) Prompt() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Draft a short, friendly, and safety-conscious message to start a conversation "+
		"with a potential travel buddy named %s.\n\n", r.RecipientName)
	sb.WriteString("Context:\n")
	fmt.Fprintf(&sb, "- We matched because we both prioritize: %s.\n", r.Priority.Label())
	fmt.Fprintf(&sb, "- I am currently in: %s.\n\n", r.Location)
	sb.WriteString("Goal:\n")
	sb.WriteString("- Break the ice warmly.\n")
	sb.WriteString("- Immediately establish a collaborative safety footing " +
		"(e.g., \"Let's vet accommodations together\" or \"Interested in sharing live locations if we meet?\").\n")
	sb.WriteString("- Keep it under 50 words.\n")
	return sb.String()
}

// FallbackMessage is the deterministic greeting substituted when generation
// fails, embedding the recipient name and the priority label.
func (r *IcebreakerRequest) FallbackMessage() string {
	return fmt.Sprintf("Hi %s, I noticed we both care about %s. Would love to connect!", r.RecipientName, r.Priority.Label())
}

// Icebreaker generates a greeting between two matched travelers. Per the
// builder's failure policy, generation failures never propagate: the caller
// always gets a usable message. Validation errors are still returned.
func (c *Client) Icebreaker(ctx context.Context, req IcebreakerRequest) (*domain.IcebreakerResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	text, _, err := c.Generate(ctx, req.Prompt(), Options{})
	if err != nil {
		if req.Policy() == Fallback {
			log.Printf("[WARN] icebreaker generation failed, using fallback: %v", err)
			return &domain.IcebreakerResult{Message: req.FallbackMessage()}, nil
		}
		return nil, err
	}

	if text == "" {
		text = emptyIcebreakerFallback
	}
	return &domain.IcebreakerResult{Message: text}, nil
}
