package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/flashdeck-backend/internal/platform/apierr"
	"github.com/yungbote/flashdeck-backend/internal/platform/breaker"
	"github.com/yungbote/flashdeck-backend/internal/platform/ctxutil"
	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
	"github.com/yungbote/flashdeck-backend/internal/platform/openai"
	"github.com/yungbote/flashdeck-backend/internal/repos"
	"github.com/yungbote/flashdeck-backend/internal/types"
)

// AI call purposes recorded per upstream attempt.
const (
	PurposeDeckGenerate    = "deck_generate"
	PurposeExampleGenerate = "example_generate"
	PurposeRepair          = "repair"
)

// InvokeSpec describes one structured-output generation: prompts, the schema
// the model must satisfy, and the structural validator applied afterwards.
// Validate returns the issues found; an empty slice accepts the object.
type InvokeSpec struct {
	Purpose       string
	System        string
	User          string
	SchemaName    string
	Schema        map[string]any
	SchemaJSON    string
	PromptVersion string
	Sampling      openai.SamplingParams
	Validate      func(obj map[string]any) []string
	RepairPrompts func(baseSystem, baseUser, rawOutput string, issues []string, schemaJSON string) (string, string)
}

// GenerationEngine runs the invoke/validate/repair sequence shared by deck and
// example generation. At most two upstream calls happen per Invoke: the
// original attempt and, after a structural validation failure, exactly one
// corrective attempt. Both go through the circuit breaker.
type GenerationEngine struct {
	log   *logger.Logger
	ai    openai.Client
	brk   *breaker.Breaker
	calls repos.AICallLogRepo
}

func NewGenerationEngine(log *logger.Logger, ai openai.Client, brk *breaker.Breaker, calls repos.AICallLogRepo) *GenerationEngine {
	return &GenerationEngine{
		log:   log.With("service", "GenerationEngine"),
		ai:    ai,
		brk:   brk,
		calls: calls,
	}
}

func (e *GenerationEngine) Model() string { return e.ai.Model() }

// Invoke generates and validates one artifact. On success the accepted object
// has already been handed to spec.Validate; callers capture the typed result
// inside that closure.
func (e *GenerationEngine) Invoke(ctx context.Context, spec InvokeSpec) (openai.TokenUsage, error) {
	var (
		usage openai.TokenUsage
		rows  []*types.AICallLog
	)
	defer e.flushCallLogs(ctx, &rows)

	result, row, err := e.attempt(ctx, spec.Purpose, spec.System, spec.User, spec)
	rows = append(rows, row)
	if err != nil {
		return usage, err
	}
	usage = usage.Add(result.Usage)

	issues := spec.Validate(result.Object)
	if len(issues) == 0 {
		row.Outcome = outcomeOK
		return usage, nil
	}
	row.Outcome = outcomeInvalid
	row.Detail = issuesDetail(issues)
	e.log.Warn("model output failed validation, attempting repair",
		"purpose", spec.Purpose,
		"issue_count", len(issues),
	)

	repairSystem, repairUser := spec.RepairPrompts(spec.System, spec.User, result.RawText, issues, spec.SchemaJSON)
	repaired, repairRow, err := e.attempt(ctx, PurposeRepair, repairSystem, repairUser, spec)
	rows = append(rows, repairRow)
	if err != nil {
		return usage, err
	}
	usage = usage.Add(repaired.Usage)

	issues = spec.Validate(repaired.Object)
	if len(issues) == 0 {
		repairRow.Outcome = outcomeOK
		return usage, nil
	}
	repairRow.Outcome = outcomeInvalid
	repairRow.Detail = issuesDetail(issues)
	return usage, apierr.SchemaValidationFailed(errors.New("model output failed validation after repair")).
		WithDetails(map[string]any{"issues": issues})
}

const (
	outcomeOK      = "ok"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
	outcomeTimeout = "timeout"
)

// attempt makes a single upstream call with breaker accounting. The returned
// log row always exists; its Outcome starts as the transport outcome and is
// upgraded by the caller once validation settles.
func (e *GenerationEngine) attempt(ctx context.Context, purpose, system, user string, spec InvokeSpec) (*openai.JSONResult, *types.AICallLog, error) {
	row := &types.AICallLog{
		Purpose:       purpose,
		Model:         e.ai.Model(),
		PromptVersion: spec.PromptVersion,
		RequestID:     ctxutil.RequestID(ctx),
	}

	if err := e.brk.Allow(); err != nil {
		row.Outcome = outcomeError
		row.Detail = datatypes.JSON(`{"reason":"circuit_open"}`)
		return nil, row, apierr.CircuitOpen(err)
	}

	start := time.Now()
	result, err := e.ai.GenerateJSON(ctx, system, user, spec.SchemaName, spec.Schema, spec.Sampling)
	row.DurationMs = int(time.Since(start).Milliseconds())
	if err != nil {
		e.brk.RecordFailure()
		if openai.IsTimeout(err) {
			row.Outcome = outcomeTimeout
			return nil, row, apierr.UpstreamTimeout(fmt.Errorf("%s: %w", purpose, err))
		}
		row.Outcome = outcomeError
		return nil, row, apierr.Upstream(fmt.Errorf("%s: %w", purpose, err))
	}
	e.brk.RecordSuccess()

	row.PromptTokens = result.Usage.Prompt
	row.CompletionTokens = result.Usage.Completion
	row.TotalTokens = result.Usage.Total
	return result, row, nil
}

// flushCallLogs persists accounting rows best-effort; a logging failure never
// fails the generation it describes.
func (e *GenerationEngine) flushCallLogs(ctx context.Context, rows *[]*types.AICallLog) {
	if e.calls == nil || len(*rows) == 0 {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctxutil.Detach(ctx), 5*time.Second)
	defer cancel()
	if err := e.calls.Create(writeCtx, *rows); err != nil {
		e.log.Warn("failed to persist ai call logs", "error", err)
	}
}

func issuesDetail(issues []string) datatypes.JSON {
	raw, err := json.Marshal(map[string]any{"issues": issues})
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
