package judge

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/saturn/pkg/cache"
	"mercator-hq/saturn/pkg/evaluator"
	"mercator-hq/saturn/pkg/telemetry/metrics"
)

// RuleEvaluator is the fast, deterministic evaluator.
type RuleEvaluator interface {
	Evaluate(ctx context.Context, tenantID, rulesetID uuid.UUID, input map[string]any) evaluator.RuleOutcome
}

// LLMEvaluator is the slow, probabilistic evaluator.
type LLMEvaluator interface {
	Evaluate(ctx context.Context, input, extra map[string]any) evaluator.LLMOutcome
}

// Options tunes an Engine. The zero value is usable.
type Options struct {
	// RuleWeight and LLMWeight set the HYBRID_WEIGHTED combination; they
	// are normalized so only their ratio matters. Both zero selects the
	// 0.6/0.4 default.
	RuleWeight float64
	LLMWeight  float64
	// CacheTTL is how long results stay cached. Zero means one hour.
	CacheTTL time.Duration
	// Metrics may be nil.
	Metrics *metrics.JudgmentMetrics
}

// Engine combines the two evaluators under a policy.
type Engine struct {
	rule    RuleEvaluator
	llm     LLMEvaluator
	cache   cache.Store
	metrics *metrics.JudgmentMetrics
	logger  *slog.Logger

	ruleWeight float64
	llmWeight  float64
	cacheTTL   time.Duration
}

// NewEngine builds an engine. cacheStore may be nil to disable caching.
func NewEngine(rule RuleEvaluator, llm LLMEvaluator, cacheStore cache.Store, opts Options) *Engine {
	ruleWeight, llmWeight := opts.RuleWeight, opts.LLMWeight
	if ruleWeight == 0 && llmWeight == 0 {
		ruleWeight, llmWeight = DefaultRuleWeight, DefaultLLMWeight
	}
	total := ruleWeight + llmWeight
	ruleWeight /= total
	llmWeight /= total

	cacheTTL := opts.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	return &Engine{
		rule:       rule,
		llm:        llm,
		cache:      cacheStore,
		metrics:    opts.Metrics,
		logger:     slog.Default().With("component", "judge"),
		ruleWeight: ruleWeight,
		llmWeight:  llmWeight,
		cacheTTL:   cacheTTL,
	}
}

// Judge runs one judgment. It returns an error only for malformed requests
// (*ValidationError, *UnknownPolicyError); evaluator failures degrade into
// the result per the active policy.
func (e *Engine) Judge(ctx context.Context, req Request) (*JudgmentResult, error) {
	start := time.Now()

	policy := req.Policy
	if policy == "" {
		policy = DefaultPolicy
	}
	if !policy.Valid() {
		return nil, &UnknownPolicyError{Policy: string(policy)}
	}
	if req.TenantID == uuid.Nil {
		return nil, &ValidationError{Field: "tenant_id", Message: "must be a non-nil UUID"}
	}
	if req.RulesetID == uuid.Nil {
		return nil, &ValidationError{Field: "ruleset_id", Message: "must be a non-nil UUID"}
	}
	if req.Input == nil {
		return nil, &ValidationError{Field: "input", Message: "must be present"}
	}

	fp, err := Fingerprint(req.Input)
	if err != nil {
		return nil, &ValidationError{Field: "input", Message: err.Error()}
	}
	key := cacheKey(req.TenantID, req.RulesetID, fp)

	if cached := e.lookupCache(ctx, key, policy, start); cached != nil {
		return cached, nil
	}

	var result *JudgmentResult
	switch policy {
	case PolicyRuleOnly:
		result = e.ruleOnly(ctx, req)
	case PolicyLLMOnly:
		result = e.llmOnly(ctx, req)
	case PolicyRuleFallback:
		result = e.ruleFallback(ctx, req)
	case PolicyLLMFallback:
		result = e.llmFallback(ctx, req)
	case PolicyHybridGate:
		result = e.hybridGate(ctx, req)
	case PolicyEscalate:
		result = e.escalate(ctx, req)
	case PolicyHybridWeighted:
		result = e.hybridWeighted(ctx, req)
	}

	result.PolicyUsed = policy
	result.ExecutionTimeMs = time.Since(start).Milliseconds()
	result.Timestamp = time.Now().UTC()

	e.metrics.RecordJudgment(string(policy), result.Source, string(result.Decision), time.Since(start))

	if result.Confidence >= CacheWriteThreshold {
		e.writeCache(ctx, key, result)
	}

	e.logger.Info("judgment complete",
		"tenant_id", req.TenantID,
		"ruleset_id", req.RulesetID,
		"policy", policy,
		"decision", result.Decision,
		"confidence", result.Confidence,
		"source", result.Source,
		"duration_ms", result.ExecutionTimeMs,
	)
	return result, nil
}

// lookupCache returns a rehydrated result on a hit. Cache failures are
// logged and treated as misses; the cache must never break a judgment.
func (e *Engine) lookupCache(ctx context.Context, key string, policy Policy, start time.Time) *JudgmentResult {
	if e.cache == nil {
		return nil
	}

	entry, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Warn("cache lookup failed", "error", err)
		return nil
	}
	if entry == nil {
		e.metrics.RecordCacheMiss()
		return nil
	}

	var result JudgmentResult
	if err := json.Unmarshal(entry.Payload, &result); err != nil {
		e.logger.Warn("cache entry corrupt, discarding", "key", key, "error", err)
		e.metrics.RecordCacheMiss()
		return nil
	}

	e.metrics.RecordCacheHit()
	result.Cached = true
	result.Source = "cache"
	result.PolicyUsed = policy
	result.ExecutionTimeMs = time.Since(start).Milliseconds()
	return &result
}

func (e *Engine) writeCache(ctx context.Context, key string, result *JudgmentResult) {
	if e.cache == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		e.logger.Warn("result not cacheable", "error", err)
		return
	}
	entry := cache.Entry{
		Payload:    payload,
		Confidence: result.Confidence,
		CachedAt:   time.Now(),
	}
	if err := e.cache.Set(ctx, key, entry, e.cacheTTL); err != nil {
		e.logger.Warn("cache write failed", "error", err)
		return
	}
	e.metrics.RecordCacheWrite()
}

// Invalidate removes cached judgments for a tenant, or for one of its
// rulesets when rulesetID is non-nil. It returns the number removed.
func (e *Engine) Invalidate(ctx context.Context, tenantID, rulesetID uuid.UUID) (int, error) {
	if e.cache == nil {
		return 0, nil
	}
	prefix := TenantPrefix(tenantID)
	if rulesetID != uuid.Nil {
		prefix = RulesetPrefix(tenantID, rulesetID)
	}
	return e.cache.InvalidatePrefix(ctx, prefix)
}

// CacheStats reports cache effectiveness.
func (e *Engine) CacheStats(ctx context.Context) (cache.Stats, error) {
	if e.cache == nil {
		return cache.Stats{}, nil
	}
	return e.cache.Stats(ctx)
}
