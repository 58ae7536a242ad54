package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const redisKeyPrefix = "qc:"

// Policy sets how long a cached value is served without refetching (StaleAfter)
// and how long it is kept at all (RetainFor).
type Policy struct {
	StaleAfter time.Duration
	RetainFor  time.Duration
}

func (p Policy) normalized() Policy {
	if p.StaleAfter < 0 {
		p.StaleAfter = 0
	}
	if p.RetainFor < p.StaleAfter {
		p.RetainFor = p.StaleAfter
	}
	return p
}

// RedisClient is the subset of go-redis the second-level cache needs.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

type entry struct {
	value     any
	hasValue  bool
	fetchedAt time.Time
	policy    Policy
	inFlight  bool
}

// Stats is a point-in-time view of the cache contents.
type Stats struct {
	Entries  int `json:"entries"`
	InFlight int `json:"in_flight"`
}

// QueryCache memoizes producer results by key. At most one producer call per key
// runs at a time; concurrent resolvers for the key share its result. Failures are
// never stored.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	l2      RedisClient
	tracer  trace.Tracer
	now     func() time.Time
}

// NewQueryCache builds an empty cache. l2 may be nil.
func NewQueryCache(tracer trace.Tracer, l2 RedisClient) *QueryCache {
	return &QueryCache{
		entries: make(map[string]*entry),
		l2:      l2,
		tracer:  tracer,
		now:     time.Now,
	}
}

// Resolve returns the fresh cached value for key, joins an in-flight call for key,
// or runs producer and caches its result.
func Resolve[T any](ctx context.Context, qc *QueryCache, key string, policy Policy, producer func(context.Context) (T, error)) (T, error) {
	ctx, span := qc.tracer.Start(ctx, "query-cache.resolve")
	defer span.End()
	span.SetAttributes(attribute.String("cache.key", key))

	var zero T
	policy = policy.normalized()

	if v, ok := lookup[T](qc, key, true); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return v, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	// The shared call must outlive any single caller that gives up waiting.
	detached := context.WithoutCancel(ctx)
	ch := qc.group.DoChan(key, func() (any, error) {
		qc.setInFlight(key, policy, true)
		defer qc.setInFlight(key, policy, false)

		if v, ok := lookup[T](qc, key, true); ok {
			return v, nil
		}
		if v, at, ok := loadRemote[T](detached, qc, key, policy); ok {
			qc.store(key, v, at, policy)
			return v, nil
		}

		v, err := producer(detached)
		if err != nil {
			return nil, err
		}
		at := qc.now()
		qc.store(key, v, at, policy)
		saveRemote(detached, qc, key, v, at, policy)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			span.RecordError(res.Err)
			return zero, res.Err
		}
		span.SetAttributes(attribute.Bool("cache.shared", res.Shared))
		v, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("query cache: key %s holds %T", key, res.Val)
		}
		return v, nil
	}
}

// Peek returns a retained value for key even if it is stale, for use as a
// placeholder while a refetch runs. fresh reports whether it is still within
// its stale window.
func Peek[T any](qc *QueryCache, key string) (v T, fresh bool, ok bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	e, found := qc.entries[key]
	if !found || !e.hasValue {
		return v, false, false
	}
	age := qc.now().Sub(e.fetchedAt)
	if age >= e.policy.RetainFor {
		return v, false, false
	}
	v, ok = e.value.(T)
	return v, ok && age < e.policy.StaleAfter, ok
}

// InFlight reports whether a producer call for key is running.
func (qc *QueryCache) InFlight(key string) bool {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	e, ok := qc.entries[key]
	return ok && e.inFlight
}

// Invalidate drops key so the next Resolve refetches.
func (qc *QueryCache) Invalidate(key string) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	if e, ok := qc.entries[key]; ok && !e.inFlight {
		delete(qc.entries, key)
	} else if ok {
		e.hasValue = false
		e.value = nil
	}
}

// Sweep evicts values past their retention window and returns how many it removed.
func (qc *QueryCache) Sweep() int {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	now := qc.now()
	removed := 0
	for key, e := range qc.entries {
		if e.inFlight {
			continue
		}
		if !e.hasValue || now.Sub(e.fetchedAt) >= e.policy.RetainFor {
			delete(qc.entries, key)
			removed++
		}
	}
	return removed
}

// Reset empties the cache. Calls already in flight still deliver to their waiters.
func (qc *QueryCache) Reset() {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.entries = make(map[string]*entry)
}

func (qc *QueryCache) Stats() Stats {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	s := Stats{Entries: len(qc.entries)}
	for _, e := range qc.entries {
		if e.inFlight {
			s.InFlight++
		}
	}
	return s
}

func lookup[T any](qc *QueryCache, key string, freshOnly bool) (T, bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	var zero T
	e, ok := qc.entries[key]
	if !ok || !e.hasValue {
		return zero, false
	}
	age := qc.now().Sub(e.fetchedAt)
	if freshOnly && age >= e.policy.StaleAfter {
		return zero, false
	}
	v, ok := e.value.(T)
	return v, ok
}

func (qc *QueryCache) store(key string, v any, at time.Time, policy Policy) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	e, ok := qc.entries[key]
	if !ok {
		e = &entry{}
		qc.entries[key] = e
	}
	e.value = v
	e.hasValue = true
	e.fetchedAt = at
	e.policy = policy
}

func (qc *QueryCache) setInFlight(key string, policy Policy, on bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	e, ok := qc.entries[key]
	if !ok {
		if !on {
			return
		}
		e = &entry{policy: policy}
		qc.entries[key] = e
	}
	e.inFlight = on
	if !on && !e.hasValue {
		delete(qc.entries, key)
	}
}

type remoteEnvelope struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Value     json.RawMessage `json:"value"`
}

func loadRemote[T any](ctx context.Context, qc *QueryCache, key string, policy Policy) (T, time.Time, bool) {
	var zero T
	if qc.l2 == nil {
		return zero, time.Time{}, false
	}

	data, err := qc.l2.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, time.Time{}, false
	}
	if err != nil {
		log.Printf("query cache redis read error for %s: %v", key, err)
		return zero, time.Time{}, false
	}

	var env remoteEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("query cache redis decode error for %s: %v", key, err)
		return zero, time.Time{}, false
	}
	if qc.now().Sub(env.FetchedAt) >= policy.StaleAfter {
		return zero, time.Time{}, false
	}
	var v T
	if err := json.Unmarshal(env.Value, &v); err != nil {
		log.Printf("query cache redis decode error for %s: %v", key, err)
		return zero, time.Time{}, false
	}
	return v, env.FetchedAt, true
}

func saveRemote(ctx context.Context, qc *QueryCache, key string, v any, at time.Time, policy Policy) {
	if qc.l2 == nil || policy.RetainFor <= 0 {
		return
	}
	value, err := json.Marshal(v)
	if err != nil {
		log.Printf("query cache redis encode error for %s: %v", key, err)
		return
	}
	data, err := json.Marshal(remoteEnvelope{FetchedAt: at, Value: value})
	if err != nil {
		log.Printf("query cache redis encode error for %s: %v", key, err)
		return
	}
	if err := qc.l2.Set(ctx, redisKeyPrefix+key, data, policy.RetainFor).Err(); err != nil {
		log.Printf("query cache redis write error for %s: %v", key, err)
	}
}
