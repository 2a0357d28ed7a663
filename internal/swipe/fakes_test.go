package swipe

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/imadgeboyega/fitmatch-backend/internal/config"
	"github.com/imadgeboyega/fitmatch-backend/internal/kvstore"
	"github.com/imadgeboyega/fitmatch-backend/internal/profile"
	"github.com/imadgeboyega/fitmatch-backend/internal/signals"
	"github.com/rs/zerolog"
)

func ptr[T any](v T) *T { return &v }

// memoryProfiles is an in-memory profile store
type memoryProfiles struct {
	mu       sync.Mutex
	profiles map[int64]*profile.Profile
	// leaky ignores the exclusion list, like a store returning a bad batch
	leaky     bool
	findErr   error
	findCalls int
	lastLimit int
}

func newMemoryProfiles(ps ...*profile.Profile) *memoryProfiles {
	m := &memoryProfiles{profiles: map[int64]*profile.Profile{}}
	for _, p := range ps {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *memoryProfiles) GetProfile(_ context.Context, id int64) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryProfiles) GetProfiles(_ context.Context, ids []int64) (map[int64]*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[int64]*profile.Profile{}
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *memoryProfiles) FindCandidates(_ context.Context, excludeIDs []int64, eligibleOnly bool, limit int) ([]*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	m.lastLimit = limit
	if m.findErr != nil {
		return nil, m.findErr
	}

	excluded := map[int64]bool{}
	if !m.leaky {
		for _, id := range excludeIDs {
			excluded[id] = true
		}
	}

	ids := make([]int64, 0, len(m.profiles))
	for id := range m.profiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []*profile.Profile{}
	for _, id := range ids {
		p := m.profiles[id]
		if excluded[id] || (eligibleOnly && !m.leaky && !p.Eligible()) {
			continue
		}
		cp := *p
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryProfiles) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findCalls
}

type memorySignals struct {
	mu       sync.Mutex
	signals  map[int64]*signals.EngagementSignal
	positive map[int64]int
	getErr   error
	incErr   error
}

func newMemorySignals() *memorySignals {
	return &memorySignals{signals: map[int64]*signals.EngagementSignal{}, positive: map[int64]int{}}
}

func (m *memorySignals) GetSignals(_ context.Context, ids []int64) (map[int64]*signals.EngagementSignal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := map[int64]*signals.EngagementSignal{}
	for _, id := range ids {
		if s, ok := m.signals[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (m *memorySignals) IncrementPositiveMatch(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incErr != nil {
		return m.incErr
	}
	m.positive[userID]++
	return nil
}

func (m *memorySignals) IncrementNegativeFlag(context.Context, int64) error { return nil }

type memoryBlocks struct {
	mu    sync.Mutex
	pairs map[[2]int64]bool
	err   error
}

func newMemoryBlocks() *memoryBlocks {
	return &memoryBlocks{pairs: map[[2]int64]bool{}}
}

func (m *memoryBlocks) block(blocker, blocked int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs[[2]int64{blocker, blocked}] = true
}

func (m *memoryBlocks) BlockedByUser(_ context.Context, userID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var ids []int64
	for k := range m.pairs {
		if k[0] == userID {
			ids = append(ids, k[1])
		}
	}
	return ids, nil
}

func (m *memoryBlocks) BlockedUser(_ context.Context, userID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var ids []int64
	for k := range m.pairs {
		if k[1] == userID {
			ids = append(ids, k[0])
		}
	}
	return ids, nil
}

func (m *memoryBlocks) IsEitherBlocked(_ context.Context, a, b int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	return m.pairs[[2]int64{a, b}] || m.pairs[[2]int64{b, a}], nil
}

// memoryRepo keeps likes and matches; match creation is atomic per pair
type memoryRepo struct {
	mu      sync.Mutex
	nextID  int64
	likes   map[[2]int64]*LikeEdge
	matches map[[2]int64]*Match
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{likes: map[[2]int64]*LikeEdge{}, matches: map[[2]int64]*Match{}}
}

func (m *memoryRepo) UpsertLike(_ context.Context, from, to int64, isSuper bool) (*LikeEdge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int64{from, to}
	if edge, ok := m.likes[key]; ok {
		edge.IsSuper = edge.IsSuper || isSuper
		cp := *edge
		return &cp, nil
	}
	m.nextID++
	edge := &LikeEdge{ID: m.nextID, FromUserID: from, ToUserID: to, IsSuper: isSuper, CreatedAt: time.Now()}
	m.likes[key] = edge
	cp := *edge
	return &cp, nil
}

func (m *memoryRepo) GetLike(_ context.Context, from, to int64) (*LikeEdge, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	edge, ok := m.likes[[2]int64{from, to}]
	if !ok {
		return nil, false, nil
	}
	cp := *edge
	return &cp, true, nil
}

func (m *memoryRepo) DeleteLike(_ context.Context, from, to int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.likes, [2]int64{from, to})
	return nil
}

func (m *memoryRepo) CreateMatchIfAbsent(_ context.Context, a, b int64) (*Match, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u1, u2 := canonicalPair(a, b)
	key := [2]int64{u1, u2}
	if existing, ok := m.matches[key]; ok {
		cp := *existing
		return &cp, false, nil
	}
	match := &Match{ID: uuid.NewString(), User1ID: u1, User2ID: u2, CreatedAt: time.Now()}
	m.matches[key] = match
	cp := *match
	return &cp, true, nil
}

func (m *memoryRepo) ListMatches(_ context.Context, userID int64) ([]*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Match{}
	for _, match := range m.matches {
		if match.User1ID == userID || match.User2ID == userID {
			cp := *match
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryRepo) likeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.likes)
}

func (m *memoryRepo) matchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matches)
}

var errStoreDown = errors.New("store down")

func testSwipeConfig() config.SwipeConfig {
	return config.SwipeConfig{
		DefaultQueueLimit:   20,
		DefaultRadiusKm:     5,
		MinScore:            0.6,
		QueueCacheTTL:       300 * time.Second,
		SeenTTL:             7 * 24 * time.Hour,
		LikeDailyLimit:      50,
		SuperLikeDailyLimit: 5,
		SideEffectTimeout:   time.Second,
	}
}

func newRedisStore(t *testing.T) (kvstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return kvstore.NewRedisStore(client), mr
}

// testEnv wires the real components over miniredis and in-memory stores
type testEnv struct {
	store    kvstore.Store
	redis    *miniredis.Miniredis
	profiles *memoryProfiles
	signals  *memorySignals
	blocks   *memoryBlocks
	repo     *memoryRepo

	seen     *SeenRegistry
	cache    *QueueCache
	throttle *Throttle
	queue    *QueueBuilder
	recorder *Recorder
}

func newTestEnv(t *testing.T, cfg config.SwipeConfig, ps ...*profile.Profile) *testEnv {
	t.Helper()
	store, mr := newRedisStore(t)

	env := &testEnv{
		store:    store,
		redis:    mr,
		profiles: newMemoryProfiles(ps...),
		signals:  newMemorySignals(),
		blocks:   newMemoryBlocks(),
		repo:     newMemoryRepo(),
	}

	log := zerolog.Nop()
	env.seen = NewSeenRegistry(store, cfg.SeenTTL)
	env.cache = NewQueueCache(store, cfg.QueueCacheTTL, log)
	env.throttle = NewThrottle(store, cfg.LikeDailyLimit, cfg.SuperLikeDailyLimit)
	exclusion := NewExclusionResolver(env.seen, env.blocks)
	env.queue = NewQueueBuilder(env.profiles, env.signals, exclusion, env.cache, QueueDefaults{
		Limit:    cfg.DefaultQueueLimit,
		RadiusKm: cfg.DefaultRadiusKm,
		MinScore: cfg.MinScore,
	}, log)
	env.recorder = NewRecorder(RecorderDeps{
		Repo:              env.repo,
		Profiles:          env.profiles,
		Throttle:          env.throttle,
		Seen:              env.seen,
		Cache:             env.cache,
		Blocks:            env.blocks,
		Exclusion:         exclusion,
		Signals:           env.signals,
		SideEffectTimeout: cfg.SideEffectTimeout,
	}, log)

	return env
}

// austin builds a profile near downtown Austin
func austin(id int64, lat, lng float64) *profile.Profile {
	return &profile.Profile{
		ID:           id,
		Name:         "user",
		FitnessLevel: ptr(profile.FitnessIntermediate),
		Interests:    []string{"Yoga", "HIIT", "Functional"},
		WorkoutTimes: []string{},
		Location:     &profile.Location{Name: ptr("Austin"), Lat: ptr(lat), Lng: ptr(lng)},
	}
}

func requesterProfile() *profile.Profile {
	return &profile.Profile{
		ID:           1,
		Name:         "requester",
		FitnessLevel: ptr(profile.FitnessBeginner),
		Interests:    []string{"HIIT", "Yoga"},
		WorkoutTimes: []string{},
		Location:     &profile.Location{Lat: ptr(30.2672), Lng: ptr(-97.7431)},
	}
}
