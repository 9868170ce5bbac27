package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safepassage/safepassage/pkg/config"
	"github.com/safepassage/safepassage/pkg/domain"
)

func TestIcebreakerRequest_Prompt(t *testing.T) {
	req := IcebreakerRequest{
		RecipientName: "Alex",
		Priority:      domain.PrioritySoloFemale,
		Location:      "Austin",
	}

	prompt := req.Prompt()
	assert.Contains(t, prompt, "Alex")
	assert.Contains(t, prompt, "Solo Female Safety")
	assert.Contains(t, prompt, "Austin")
	assert.Contains(t, prompt, "under 50 words")
}

func TestClient_Icebreaker(t *testing.T) {
	var gotReq openai.ChatCompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionResponse("Hi Alex! Fellow solo traveler here - want to vet accommodations together?"))
	})

	result, err := client.Icebreaker(context.Background(), IcebreakerRequest{
		RecipientName: "Alex",
		Priority:      domain.PrioritySoloFemale,
		Location:      "Austin",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi Alex! Fellow solo traveler here - want to vet accommodations together?", result.Message)

	// icebreaker runs without grounding and with the provider default temperature
	assert.Nil(t, gotReq.ResponseFormat)
	assert.Zero(t, gotReq.Temperature)
}

func TestClient_IcebreakerFallbackOnFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	result, err := client.Icebreaker(context.Background(), IcebreakerRequest{
		RecipientName: "Alex",
		Priority:      domain.PrioritySoloFemale,
		Location:      "Austin",
	})
	require.NoError(t, err, "generation failures never propagate from the icebreaker builder")
	assert.Contains(t, result.Message, "Alex")
	assert.Contains(t, result.Message, "Solo Female Safety")
}

func TestClient_IcebreakerFallbackOnMissingKey(t *testing.T) {
	client := NewClient(config.LLMConfig{Model: "gpt-4o-mini"})

	result, err := client.Icebreaker(context.Background(), IcebreakerRequest{
		RecipientName: "Alex",
		Priority:      domain.PrioritySoloFemale,
		Location:      "Austin",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi Alex, I noticed we both care about Solo Female Safety. Would love to connect!", result.Message)
}

func TestClient_IcebreakerEmptyText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionResponse(""))
	})

	result, err := client.Icebreaker(context.Background(), IcebreakerRequest{
		RecipientName: "Alex",
		Priority:      domain.PrioritySoloFemale,
		Location:      "Austin",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi! Let's connect safely.", result.Message)
}

func TestClient_IcebreakerValidation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("validation errors must be detected before any provider call")
	}))
	defer server.Close()

	client := NewClient(config.LLMConfig{Endpoint: server.URL + "/v1", APIKey: "k", Model: "m"})

	_, err := client.Icebreaker(context.Background(), IcebreakerRequest{RecipientName: "", Priority: domain.PrioritySoloFemale})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = client.Icebreaker(context.Background(), IcebreakerRequest{RecipientName: "Alex", Priority: "unknown"})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestFailurePolicies(t *testing.T) {
	itinerary := &ItineraryRequest{}
	icebreaker := &IcebreakerRequest{}

	assert.Equal(t, Propagate, itinerary.Policy())
	assert.Equal(t, Fallback, icebreaker.Policy())
}
