package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/safepassage/safepassage/pkg/domain"
)

// fixed demo credentials, accepted even when no backend is configured
const (
	DemoEmail    = "demo@safepassage.network"
	DemoPassword = "DemoPass2024!"
)

// DemoUserID is the identity behind the demo credentials.
const DemoUserID = "demo-user-1"

// DemoStore is the in-memory substitute used when the profile store is
// unconfigured. It comes pre-seeded with a fixed traveler directory.
type DemoStore struct {
	mu       sync.RWMutex
	users    map[string]*User               // keyed by email
	profiles map[string]*domain.UserProfile // keyed by user id
	order    []string                       // insertion order of profiles
}

// NewDemoStore creates a demo store seeded with the fixed traveler directory.
func NewDemoStore() *DemoStore {
	s := &DemoStore{
		users:    make(map[string]*User),
		profiles: make(map[string]*domain.UserProfile),
	}
	for i := range demoTravelers {
		p := demoTravelers[i]
		s.profiles[p.UserID] = &p
		s.order = append(s.order, p.UserID)
		s.users[p.Email] = &User{ID: p.UserID, Email: p.Email, CreatedAt: p.CreatedAt}
	}
	return s
}

// DemoProfile returns the profile behind the demo credentials.
func (s *DemoStore) DemoProfile() *domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := *s.profiles[DemoUserID]
	return &p
}

// CreateUser adds an identity record in memory.
func (s *DemoStore) CreateUser(_ context.Context, email, passwordHash string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	if _, exists := s.users[email]; exists {
		return nil, ErrConflict
	}
	user := &User{ID: uuid.NewString(), Email: email, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	s.users[email] = user
	return user, nil
}

// GetUserByEmail finds an identity record, ErrNotFound when missing.
func (s *DemoStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrNotFound
	}
	u := *user
	return &u, nil
}

// GetProfile reads one profile, ErrNotFound when missing.
func (s *DemoStore) GetProfile(_ context.Context, userID string) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	p := *profile
	return &p, nil
}

// ListProfiles returns the directory in seed/insertion order.
func (s *DemoStore) ListProfiles(_ context.Context) ([]domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles := make([]domain.UserProfile, 0, len(s.order))
	for _, id := range s.order {
		profiles = append(profiles, *s.profiles[id])
	}
	return profiles, nil
}

// InsertProfile stores a new profile, ErrConflict when one already exists.
func (s *DemoStore) InsertProfile(_ context.Context, profile *domain.UserProfile) (*domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[profile.UserID]; exists {
		return nil, ErrConflict
	}
	p := *profile
	p.ID = p.UserID
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	s.profiles[p.UserID] = &p
	s.order = append(s.order, p.UserID)

	result := p
	return &result, nil
}

// UpdateProfile applies a partial update in memory.
func (s *DemoStore) UpdateProfile(_ context.Context, userID string, upd *domain.ProfileUpdate) (*domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	applyUpdate(profile, upd)
	profile.UpdatedAt = time.Now().UTC()

	p := *profile
	return &p, nil
}

// demoTravelers is the fixed directory served in demo mode.
var demoTravelers = []domain.UserProfile{
	{
		ID:       DemoUserID,
		UserID:   DemoUserID,
		Email:    DemoEmail,
		Name:     "Sarah Chen",
		Avatar:   "👩‍💼",
		Location: "San Francisco, CA",
		Bio:      "Solo traveler passionate about supporting local communities and exploring hidden gems. Always ready to share safety tips!",
		Priorities: []domain.SafetyPriority{
			domain.PrioritySoloFemale,
			domain.PriorityMinoritySupport,
		},
		Style: domain.StyleActiveAdvocate,
		PreferredItineraryTypes: []domain.ItineraryType{
			domain.TypeFoodExploration,
			domain.TypeCulturalImmersion,
		},
	},
	{
		ID:       "demo-user-2",
		UserID:   "demo-user-2",
		Email:    "alex@example.com",
		Name:     "Alex Rivera",
		Avatar:   "🧑‍🦽",
		Location: "Austin, TX",
		Bio:      "Accessibility advocate making travel inclusive for everyone. Love connecting travelers with similar needs.",
		Priorities: []domain.SafetyPriority{
			domain.PriorityAccessibility,
			domain.PriorityNeurodivergent,
		},
		Style: domain.StyleCommunityBuilder,
		PreferredItineraryTypes: []domain.ItineraryType{
			domain.TypeRelaxation,
			domain.TypeSightseeing,
		},
	},
	{
		ID:       "demo-user-3",
		UserID:   "demo-user-3",
		Email:    "priya@example.com",
		Name:     "Priya Patel",
		Avatar:   "👩‍🎨",
		Location: "Mumbai, India",
		Bio:      "Cultural explorer seeking authentic experiences. Interested in interfaith dialogue and traditional arts.",
		Priorities: []domain.SafetyPriority{
			domain.PriorityReligiousInclusive,
			domain.PriorityMinoritySupport,
		},
		Style: domain.StyleCultureSeeker,
		PreferredItineraryTypes: []domain.ItineraryType{
			domain.TypeCulturalImmersion,
			domain.TypeFoodExploration,
		},
	},
	{
		ID:       "demo-user-4",
		UserID:   "demo-user-4",
		Email:    "jordan@example.com",
		Name:     "Jordan Kim",
		Avatar:   "🧗",
		Location: "Seattle, WA",
		Bio:      "Adventure seeker who loves the outdoors. Prefers small group travels and off-the-beaten-path destinations.",
		Priorities: []domain.SafetyPriority{
			domain.PrioritySoloFemale,
			domain.PriorityAccessibility,
		},
		Style: domain.StyleQuietObserver,
		PreferredItineraryTypes: []domain.ItineraryType{
			domain.TypeTrekking,
			domain.TypeAdventureSports,
		},
	},
}
