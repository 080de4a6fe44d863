package memory

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"leadgate/contexts/lead-capture/intake-service/domain/entities"
	domainerrors "leadgate/contexts/lead-capture/intake-service/domain/errors"
	"leadgate/contexts/lead-capture/intake-service/ports"

	"github.com/google/uuid"
)

// Store is the in-memory lead repository. It doubles as Clock, IDGenerator
// and RandomSource so a module can run self-contained in tests and in the
// DSN-less quickstart mode.
type Store struct {
	mu sync.RWMutex

	leads    map[string]entities.Lead
	byEmail  map[string]string
	randSeed int64
	randTick int64
}

func NewStore(seed []entities.Lead) *Store {
	leads := make(map[string]entities.Lead, len(seed))
	byEmail := make(map[string]string, len(seed))
	for _, item := range seed {
		leads[item.LeadID] = item
		byEmail[entities.NormalizeEmail(item.Email)] = item.LeadID
	}
	return &Store{
		leads:    leads,
		byEmail:  byEmail,
		randSeed: time.Now().UnixNano(),
	}
}

func (s *Store) SaveLead(_ context.Context, lead entities.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := entities.NormalizeEmail(lead.Email)
	if _, exists := s.byEmail[email]; exists {
		return domainerrors.ErrDuplicateLead
	}
	s.leads[lead.LeadID] = lead
	s.byEmail[email] = lead.LeadID
	return nil
}

func (s *Store) FindLeadByEmail(_ context.Context, email string) (entities.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byEmail[entities.NormalizeEmail(email)]
	if !exists {
		return entities.Lead{}, domainerrors.ErrLeadNotFound
	}
	return s.leads[id], nil
}

func (s *Store) ListLeads(_ context.Context, filter ports.LeadFilter) ([]entities.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Lead, 0, len(s.leads))
	for _, item := range s.leads {
		if !matches(item, filter) {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func matches(lead entities.Lead, filter ports.LeadFilter) bool {
	contains := func(haystack, needle string) bool {
		if strings.TrimSpace(needle) == "" {
			return true
		}
		return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
	}
	return contains(lead.FullName, filter.FullName) &&
		contains(lead.Email, filter.Email) &&
		contains(lead.Phone, filter.Phone) &&
		contains(lead.ClientIP, filter.ClientIP) &&
		contains(lead.State, filter.State) &&
		contains(lead.City, filter.City)
}

func (s *Store) Now() time.Time {
	return time.Now()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// SeedRandom pins the randomness streams handed out by NewRand. Tests use it
// to make spintax output reproducible.
func (s *Store) SeedRandom(seed int64) {
	atomic.StoreInt64(&s.randSeed, seed)
	atomic.StoreInt64(&s.randTick, 0)
}

func (s *Store) NewRand() *rand.Rand {
	tick := atomic.AddInt64(&s.randTick, 1)
	return rand.New(rand.NewSource(atomic.LoadInt64(&s.randSeed) + tick))
}
