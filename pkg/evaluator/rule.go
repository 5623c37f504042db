package evaluator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"mercator-hq/saturn/pkg/ruleset"
)

// ScriptRunner executes one rule script against an input document and
// returns the script's raw result map.
type ScriptRunner interface {
	Run(ctx context.Context, script string, input map[string]any) (map[string]any, error)
}

// RuleAdapter resolves a tenant's ruleset and runs it. Every failure mode
// (missing ruleset, inactive ruleset, script error) is absorbed into the
// outcome; the adapter never returns an error.
type RuleAdapter struct {
	runner   ScriptRunner
	resolver ruleset.Resolver
	logger   *slog.Logger
}

func NewRuleAdapter(runner ScriptRunner, resolver ruleset.Resolver) *RuleAdapter {
	return &RuleAdapter{
		runner:   runner,
		resolver: resolver,
		logger:   slog.Default().With("component", "rule-adapter"),
	}
}

// Evaluate runs the tenant's ruleset against input.
func (a *RuleAdapter) Evaluate(ctx context.Context, tenantID, rulesetID uuid.UUID, input map[string]any) RuleOutcome {
	rs, err := a.resolver.Resolve(ctx, tenantID, rulesetID)
	if err != nil {
		a.logger.Warn("ruleset resolution failed", "tenant_id", tenantID, "ruleset_id", rulesetID, "error", err)
		return RuleOutcome{Err: err.Error()}
	}
	if !rs.Active {
		return RuleOutcome{Err: fmt.Sprintf("ruleset %s is inactive", rs.ID)}
	}

	raw, err := a.runner.Run(ctx, rs.Script, input)
	if err != nil {
		a.logger.Warn("rule script failed", "ruleset", rs.Name, "version", rs.Version, "error", err)
		return RuleOutcome{
			RulesetName:    rs.Name,
			RulesetVersion: rs.Version,
			Err:            err.Error(),
		}
	}

	return RuleOutcome{
		Success:        true,
		Raw:            raw,
		RulesetName:    rs.Name,
		RulesetVersion: rs.Version,
	}
}
