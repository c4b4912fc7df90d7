// Package policy evaluates user-supplied Rego policies against analysis
// results. Policies are advisory: they produce decisions and reasons,
// never modify results.
package policy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/open-policy-agent/opa/v1/rego"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vihrea/vihrea/telemetry"
	"github.com/vihrea/vihrea/types"
)

// Input is the document handed to policies for one function.
type Input struct {
	Result    types.AnalysisResult `json:"result"`
	Timestamp time.Time            `json:"timestamp"`
}

// Result is the outcome of evaluating all loaded policies for one
// function.
type Result struct {
	Decision string   `json:"decision"` // "allow", "flag", "deny"
	Reason   string   `json:"reason"`
	Policies []string `json:"policies"` // which policies matched
}

// Engine compiles and evaluates Rego policies.
type Engine struct {
	logger  *telemetry.Logger
	tracer  trace.Tracer
	queries map[string]rego.PreparedEvalQuery
}

// NewEngine creates a policy engine with no policies loaded.
func NewEngine() *Engine {
	return &Engine{
		logger:  telemetry.NewLogger("policy-engine"),
		tracer:  otel.Tracer("policy-engine"),
		queries: make(map[string]rego.PreparedEvalQuery),
	}
}

// LoadPolicy compiles one Rego module under name.
func (e *Engine) LoadPolicy(ctx context.Context, name string, regoCode string) error {
	ctx, span := e.tracer.Start(ctx, "policy_engine.load_policy",
		trace.WithAttributes(attribute.String("policy.name", name)))
	defer span.End()

	query := rego.New(
		rego.Query("data.vihrea"),
		rego.Module(name, regoCode),
	)

	prepared, err := query.PrepareForEval(ctx)
	if err != nil {
		e.logger.WithContext(ctx).Error().
			Err(err).
			Str("policy_name", name).
			Msg("policy compilation failed")
		return fmt.Errorf("failed to compile policy %s: %w", name, err)
	}

	e.queries[name] = prepared

	e.logger.WithContext(ctx).Info().
		Str("policy_name", name).
		Msg("policy loaded")

	return nil
}

// LoadDir loads every .rego file in dir. Missing dir is not an error so
// the policy layer stays opt-in.
func (e *Engine) LoadDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read policy dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".rego") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		code, err := os.ReadFile(path) // #nosec G304 -- operator-provided policy dir
		if err != nil {
			return fmt.Errorf("failed to read policy %s: %w", path, err)
		}
		name := strings.TrimSuffix(entry.Name(), ".rego")
		if err := e.LoadPolicy(ctx, name, string(code)); err != nil {
			return err
		}
	}
	return nil
}

// PolicyCount returns the number of loaded policies.
func (e *Engine) PolicyCount() int {
	return len(e.queries)
}

// Evaluate runs all loaded policies against one result. A policy that
// fails to evaluate is logged and skipped; evaluation is best effort.
func (e *Engine) Evaluate(ctx context.Context, result types.AnalysisResult) (Result, error) {
	ctx, span := e.tracer.Start(ctx, "policy_engine.evaluate",
		trace.WithAttributes(attribute.String("function.id", result.FunctionID)))
	defer span.End()

	input := Input{Result: result, Timestamp: time.Now()}

	final := Result{Decision: "allow", Policies: []string{}}
	var reasons []string

	for name, query := range e.queries {
		decision, reason, matched := e.evaluatePolicy(ctx, name, query, input)
		if !matched {
			continue
		}
		final.Policies = append(final.Policies, name)
		if decisionRank(decision) > decisionRank(final.Decision) {
			final.Decision = decision
		}
		if reason != "" {
			reasons = append(reasons, reason)
		}
	}

	final.Reason = strings.Join(reasons, "; ")
	return final, nil
}

// evaluatePolicy evaluates a single policy and extracts its decision.
func (e *Engine) evaluatePolicy(ctx context.Context, name string, query rego.PreparedEvalQuery, input Input) (decision, reason string, matched bool) {
	results, err := query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		e.logger.WithContext(ctx).Error().
			Err(err).
			Str("policy_name", name).
			Msg("policy evaluation failed")
		return "", "", false
	}

	for _, res := range results {
		for _, expr := range res.Expressions {
			doc, ok := expr.Value.(map[string]interface{})
			if !ok {
				continue
			}
			if d, ok := doc["decision"].(string); ok {
				decision = d
				matched = true
			}
			if r, ok := doc["reason"].(string); ok {
				reason = r
			}
		}
	}
	return decision, reason, matched
}

// decisionRank orders decisions so the strictest one wins.
func decisionRank(decision string) int {
	switch decision {
	case "deny":
		return 3
	case "flag":
		return 2
	case "allow":
		return 1
	default:
		return 0
	}
}
