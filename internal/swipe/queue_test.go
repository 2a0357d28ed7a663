package swipe

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/imadgeboyega/fitmatch-backend/internal/profile"
	"github.com/imadgeboyega/fitmatch-backend/internal/signals"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(queue []ScoredCandidate) []int64 {
	out := make([]int64, 0, len(queue))
	for _, c := range queue {
		out = append(out, c.ID)
	}
	return out
}

func TestBuildQueueConcreteScenario(t *testing.T) {
	near := austin(2, southLat, -97.7431)
	// ~8 km due south
	far := austin(3, 30.2672-8/111.195, -97.7431)

	env := newTestEnv(t, testSwipeConfig(), requesterProfile(), near, far)

	queue, err := env.queue.Build(context.Background(), 1, 20, &Filters{RadiusKm: ptr(5.0), MinScore: ptr(0.6)})
	require.NoError(t, err)
	require.Equal(t, []int64{2}, ids(queue))

	assert.Equal(t, 0.607, queue[0].CompatibilityScore)
	require.NotNil(t, queue[0].DistanceKm)
	assert.InDelta(t, 2.1, *queue[0].DistanceKm, 0.001)
}

func TestBuildQueueExclusionInvariant(t *testing.T) {
	profiles := []*profile.Profile{requesterProfile()}
	for id := int64(2); id <= 8; id++ {
		profiles = append(profiles, austin(id, southLat, -97.7431))
	}
	hidden := austin(9, southLat, -97.7431)
	hidden.IsHidden = true
	snoozed := austin(10, southLat, -97.7431)
	snoozed.IsSnoozed = true
	profiles = append(profiles, hidden, snoozed)

	env := newTestEnv(t, testSwipeConfig(), profiles...)
	// a store that ignores the exclusion list must still not leak anyone
	env.profiles.leaky = true
	ctx := context.Background()

	require.NoError(t, env.seen.Mark(ctx, 1, 2))
	require.NoError(t, env.seen.Mark(ctx, 1, 3))
	env.blocks.block(1, 4)
	env.blocks.block(5, 1)

	queue, err := env.queue.Build(ctx, 1, 20, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{6, 7, 8}, ids(queue))
}

func TestBuildQueueFilters(t *testing.T) {
	female := austin(2, southLat, -97.7431)
	female.Gender = ptr("female")
	male := austin(3, southLat, -97.7431)
	male.Gender = ptr("male")
	unspecified := austin(4, southLat, -97.7431)
	advanced := austin(5, southLat, -97.7431)
	advanced.Gender = ptr("female")
	advanced.FitnessLevel = ptr(profile.FitnessAdvanced)
	nowhere := austin(6, 0, 0)
	nowhere.Location = nil

	env := newTestEnv(t, testSwipeConfig(), requesterProfile(), female, male, unspecified, advanced, nowhere)

	queue, err := env.queue.Build(context.Background(), 1, 20, &Filters{
		Gender:        ptr("female"),
		FitnessLevels: []string{"Intermediate", "Beginner"},
		MinScore:      ptr(0.0),
	})
	require.NoError(t, err)

	// unknown gender and unknown distance pass the hard filters
	assert.ElementsMatch(t, []int64{2, 4, 6}, ids(queue))
}

func TestBuildQueueRanksAndTruncates(t *testing.T) {
	responsive := austin(2, southLat, -97.7431)
	plain := austin(3, southLat, -97.7431)
	flagged := austin(4, southLat, -97.7431)

	env := newTestEnv(t, testSwipeConfig(), requesterProfile(), plain, responsive, flagged)
	env.signals.signals[2] = &signals.EngagementSignal{UserID: 2, PromptCount: 10, ResponseCount: 9}
	env.signals.signals[4] = &signals.EngagementSignal{UserID: 4, NegativeFlags: 3}

	queue, err := env.queue.Build(context.Background(), 1, 2, &Filters{MinScore: ptr(0.0)})
	require.NoError(t, err)
	require.Equal(t, []int64{2, 3}, ids(queue))
	assert.Equal(t, 0.657, queue[0].CompatibilityScore)
	assert.Equal(t, 8, env.profiles.lastLimit)
}

func TestBuildQueueLimits(t *testing.T) {
	env := newTestEnv(t, testSwipeConfig(), requesterProfile())
	ctx := context.Background()

	_, err := env.queue.Build(ctx, 1, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 80, env.profiles.lastLimit)

	_, err = env.queue.Build(ctx, 1, 500, nil)
	require.NoError(t, err)
	assert.Equal(t, 400, env.profiles.lastLimit)
}

func TestBuildQueueCacheCoherence(t *testing.T) {
	env := newTestEnv(t, testSwipeConfig(), requesterProfile(), austin(2, southLat, -97.7431), austin(3, southLat, -97.7431))
	ctx := context.Background()
	filters := &Filters{FitnessLevels: []string{"Intermediate", "Beginner"}}

	first, err := env.queue.Build(ctx, 1, 20, filters)
	require.NoError(t, err)
	second, err := env.queue.Build(ctx, 1, 20, &Filters{FitnessLevels: []string{"Beginner", "Intermediate"}})
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
	assert.Equal(t, 1, env.profiles.calls())

	_, err = env.recorder.Pass(ctx, 1, 2)
	require.NoError(t, err)

	third, err := env.queue.Build(ctx, 1, 20, filters)
	require.NoError(t, err)
	assert.Equal(t, 2, env.profiles.calls())
	assert.Equal(t, []int64{3}, ids(third))
}

func TestBuildQueueUncacheableRequestBypassesCache(t *testing.T) {
	env := newTestEnv(t, testSwipeConfig(), requesterProfile(), austin(2, southLat, -97.7431), austin(3, southLat, -97.7431))
	ctx := context.Background()
	radius := math.Inf(1)

	narrow, err := env.queue.Build(ctx, 1, 20, &Filters{RadiusKm: &radius, FitnessLevels: []string{"Advanced"}})
	require.NoError(t, err)
	assert.Empty(t, narrow)

	wide, err := env.queue.Build(ctx, 1, 20, &Filters{RadiusKm: &radius})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2, 3}, ids(wide))
	assert.Equal(t, 2, env.profiles.calls())
	assert.Empty(t, env.redis.Keys())
}

func TestBuildQueueCacheDisabled(t *testing.T) {
	cfg := testSwipeConfig()
	cfg.QueueCacheTTL = 0
	env := newTestEnv(t, cfg, requesterProfile(), austin(2, southLat, -97.7431))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := env.queue.Build(ctx, 1, 20, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, env.profiles.calls())
	assert.Empty(t, env.redis.Keys())
}

func TestBuildQueueUnknownRequester(t *testing.T) {
	env := newTestEnv(t, testSwipeConfig())

	_, err := env.queue.Build(context.Background(), 42, 20, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, KindUserNotFound, KindOf(err))
}

func TestBuildQueueProfileStoreDown(t *testing.T) {
	env := newTestEnv(t, testSwipeConfig(), requesterProfile())
	env.profiles.findErr = errStoreDown

	_, err := env.queue.Build(context.Background(), 1, 20, nil)
	assert.Equal(t, KindTransient, KindOf(err))
	assert.ErrorIs(t, err, errStoreDown)
}

func TestBuildQueueSurvivesCacheOutage(t *testing.T) {
	env := newTestEnv(t, testSwipeConfig(), requesterProfile(), austin(2, southLat, -97.7431))

	// point the cache at a server that is already gone
	deadStore, deadRedis := newRedisStore(t)
	deadRedis.Close()
	env.queue.cache = NewQueueCache(deadStore, time.Minute, zerolog.Nop())

	queue, err := env.queue.Build(context.Background(), 1, 20, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(queue))
}

func TestBuildQueueSignalsOutage(t *testing.T) {
	env := newTestEnv(t, testSwipeConfig(), requesterProfile(), austin(2, southLat, -97.7431))
	env.signals.getErr = errStoreDown

	queue, err := env.queue.Build(context.Background(), 1, 20, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(queue))
}

func TestBuildQueueSeenStoreDown(t *testing.T) {
	env := newTestEnv(t, testSwipeConfig(), requesterProfile())
	env.redis.Close()

	_, err := env.queue.Build(context.Background(), 1, 20, nil)
	assert.Equal(t, KindTransient, KindOf(err))
}
