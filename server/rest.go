package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/safepassage/safepassage/pkg/domain"
	"github.com/safepassage/safepassage/pkg/llm"
	"github.com/safepassage/safepassage/pkg/match"
	"github.com/safepassage/safepassage/pkg/store"
)

type ctxKey string

const userIDKey ctxKey = "userID"
const demoKey ctxKey = "demo"

// renderJSON writes a JSON response with the given status code
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[WARN] failed to encode response: %v", err)
	}
}

// renderError writes an error response, mapping domain error kinds and store
// sentinels to HTTP status codes
func renderError(w http.ResponseWriter, err error) {
	log.Printf("[WARN] request failed: %v", err)
	renderJSON(w, errStatus(err), map[string]string{"error": err.Error()})
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	}
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindGeneration:
		return http.StatusBadGateway
	case domain.KindStore:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// authMiddleware validates the bearer token and puts the user id into the
// request context
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			renderError(w, domain.NewError(domain.KindAuth, "authorization required"))
			return
		}

		userID, demo, err := s.auth.Session(token)
		if err != nil {
			renderError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, demoKey, demo)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestUserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// statusHandler reports service mode and taxonomy, public so the client can
// render the sign-in screen before authenticating
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"version":           s.cfg.Version,
		"demo_mode":         s.cfg.DemoMode,
		"safety_priorities": labeled(domain.SafetyPriorities()),
		"community_styles":  labeledStyles(domain.CommunityStyles()),
		"itinerary_types":   labeledTypes(domain.ItineraryTypes()),
	})
}

type labeledValue struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func labeled(vals []domain.SafetyPriority) []labeledValue {
	res := make([]labeledValue, 0, len(vals))
	for _, v := range vals {
		res = append(res, labeledValue{ID: string(v), Label: v.Label()})
	}
	return res
}

func labeledStyles(vals []domain.CommunityStyle) []labeledValue {
	res := make([]labeledValue, 0, len(vals))
	for _, v := range vals {
		res = append(res, labeledValue{ID: string(v), Label: v.Label()})
	}
	return res
}

func labeledTypes(vals []domain.ItineraryType) []labeledValue {
	res := make([]labeledValue, 0, len(vals))
	for _, v := range vals {
		res = append(res, labeledValue{ID: string(v), Label: v.Label()})
	}
	return res
}

type credentialsRequest struct {
	Email    string              `json:"email"`
	Password string              `json:"password"`
	Profile  *domain.UserProfile `json:"profile,omitempty"`
}

type sessionResponse struct {
	Session any                 `json:"session"`
	Profile *domain.UserProfile `json:"profile"`
}

func (s *Server) signUpHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, domain.NewError(domain.KindValidation, "invalid request body"))
		return
	}

	session, profile, err := s.auth.SignUp(r.Context(), req.Email, req.Password, req.Profile)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusCreated, sessionResponse{Session: session, Profile: profile})
}

func (s *Server) signInHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, domain.NewError(domain.KindValidation, "invalid request body"))
		return
	}

	session, profile, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, sessionResponse{Session: session, Profile: profile})
}

func (s *Server) signOutHandler(w http.ResponseWriter, r *http.Request) {
	token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := s.auth.SignOut(r.Context(), token); err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	demo, _ := r.Context().Value(demoKey).(bool)
	renderJSON(w, http.StatusOK, map[string]any{"user_id": requestUserID(r), "demo": demo})
}

func (s *Server) profileHandler(w http.ResponseWriter, r *http.Request) {
	profile, err := s.store.GetProfile(r.Context(), requestUserID(r))
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, profile)
}

func (s *Server) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var upd domain.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		renderError(w, domain.NewError(domain.KindValidation, "invalid request body"))
		return
	}

	profile, err := s.store.UpdateProfile(r.Context(), requestUserID(r), &upd)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, profile)
}

// travelersHandler returns the full directory minus the requester
func (s *Server) travelersHandler(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.store.ListProfiles(r.Context())
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{
		"travelers": excludeUser(profiles, requestUserID(r)),
	})
}

type searchRequest struct {
	Priorities []string `json:"priorities"`
	Styles     []string `json:"styles"`
}

type searchResponse struct {
	State      match.FlowState         `json:"state"`
	Matches    []domain.UserProfile    `json:"matches"`
	Count      int                     `json:"count"`
	Priorities []domain.SafetyPriority `json:"priorities"`
	Styles     []domain.CommunityStyle `json:"styles"`
}

// searchHandler runs one full search wizard cycle: validate input, enter the
// loading state, filter the directory and complete with the result set. At
// least one safety priority is required; styles are optional and widen the
// match via OR semantics.
func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, domain.NewError(domain.KindValidation, "invalid request body"))
		return
	}

	priorities := make([]domain.SafetyPriority, 0, len(req.Priorities))
	for _, raw := range req.Priorities {
		p, err := domain.ParseSafetyPriority(raw)
		if err != nil {
			renderError(w, err)
			return
		}
		priorities = append(priorities, p)
	}
	if len(priorities) == 0 {
		renderError(w, domain.NewError(domain.KindValidation, "select at least one safety priority"))
		return
	}

	styles := make([]domain.CommunityStyle, 0, len(req.Styles))
	for _, raw := range req.Styles {
		st, err := domain.ParseCommunityStyle(raw)
		if err != nil {
			renderError(w, err)
			return
		}
		styles = append(styles, st)
	}

	flow := match.NewFlow(s.cfg.ResultDelay)
	if err := flow.Begin(); err != nil {
		renderError(w, err)
		return
	}

	profiles, err := s.store.ListProfiles(r.Context())
	if err != nil {
		renderError(w, err)
		return
	}
	candidates := excludeUser(profiles, requestUserID(r))
	matches := match.Filter(candidates, priorities, styles)

	if err := flow.Complete(r.Context()); err != nil {
		renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, searchResponse{
		State:      flow.State(),
		Matches:    matches,
		Count:      len(matches),
		Priorities: priorities,
		Styles:     styles,
	})
}

type itineraryRequest struct {
	Destination    string   `json:"destination"`
	Priorities     []string `json:"priorities"`
	Days           int      `json:"days"`
	ItineraryTypes []string `json:"itinerary_types"`
	CustomType     string   `json:"custom_type"`
}

func (s *Server) itineraryHandler(w http.ResponseWriter, r *http.Request) {
	var req itineraryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, domain.NewError(domain.KindValidation, "invalid request body"))
		return
	}

	priorities := make([]domain.SafetyPriority, 0, len(req.Priorities))
	for _, raw := range req.Priorities {
		p, err := domain.ParseSafetyPriority(raw)
		if err != nil {
			renderError(w, err)
			return
		}
		priorities = append(priorities, p)
	}

	types := make([]domain.ItineraryType, 0, len(req.ItineraryTypes))
	for _, raw := range req.ItineraryTypes {
		it, err := domain.ParseItineraryType(raw)
		if err != nil {
			renderError(w, err)
			return
		}
		types = append(types, it)
	}

	style, err := llm.StyleFromTypes(types, req.CustomType)
	if err != nil {
		renderError(w, err)
		return
	}

	result, err := s.generator.Itinerary(r.Context(), llm.ItineraryRequest{
		Destination: req.Destination,
		Priorities:  priorities,
		Days:        req.Days,
		Style:       style,
	})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

type icebreakerRequest struct {
	RecipientName string `json:"recipient_name"`
	Priority      string `json:"priority"`
	Location      string `json:"location"`
}

// icebreakerHandler generates a greeting for a matched traveler. The shared
// priority defaults to the requester's primary one when not given, and the
// location to the requester's profile location.
func (s *Server) icebreakerHandler(w http.ResponseWriter, r *http.Request) {
	var req icebreakerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, domain.NewError(domain.KindValidation, "invalid request body"))
		return
	}

	priority := domain.PrioritySoloFemale
	if req.Priority != "" {
		p, err := domain.ParseSafetyPriority(req.Priority)
		if err != nil {
			renderError(w, err)
			return
		}
		priority = p
	}

	location := req.Location
	if req.Priority == "" || location == "" {
		if profile, err := s.store.GetProfile(r.Context(), requestUserID(r)); err == nil {
			if req.Priority == "" {
				if p, ok := profile.PrimaryPriority(); ok {
					priority = p
				}
			}
			if location == "" {
				location = profile.Location
			}
		}
	}

	result, err := s.generator.Icebreaker(r.Context(), llm.IcebreakerRequest{
		RecipientName: req.RecipientName,
		Priority:      priority,
		Location:      location,
	})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// excludeUser drops the requester's own profile from a directory listing
func excludeUser(profiles []domain.UserProfile, userID string) []domain.UserProfile {
	res := make([]domain.UserProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.UserID == userID {
			continue
		}
		res = append(res, p)
	}
	return res
}
