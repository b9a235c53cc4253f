package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/flashdeck-backend/internal/gen/schemas"
	"github.com/yungbote/flashdeck-backend/internal/platform/apierr"
	"github.com/yungbote/flashdeck-backend/internal/platform/breaker"
)

func acceptOKField(obj map[string]any) []string {
	if obj == nil {
		return []string{"output is not a JSON object"}
	}
	if ok, _ := obj["ok"].(bool); ok {
		return nil
	}
	return []string{"ok field missing or false"}
}

func testSpec() InvokeSpec {
	return InvokeSpec{
		Purpose:       PurposeDeckGenerate,
		System:        "system prompt",
		User:          "user prompt",
		SchemaName:    "test_output",
		Schema:        map[string]any{"type": "object"},
		SchemaJSON:    `{"type":"object"}`,
		PromptVersion: "v1",
		Validate:      acceptOKField,
		RepairPrompts: schemas.RepairPrompts,
	}
}

func TestInvokeValidFirstAttempt(t *testing.T) {
	ai := &fakeAI{responses: []fakeAIResponse{
		{obj: map[string]any{"ok": true}, raw: `{"ok":true}`},
	}}
	calls := &fakeCallLogRepo{}
	engine := NewGenerationEngine(testLogger(t), ai, testBreaker(t), calls)

	usage, err := engine.Invoke(context.Background(), testSpec())
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if ai.callCount() != 1 {
		t.Fatalf("made %d upstream calls, want 1", ai.callCount())
	}
	if usage.Total != 150 {
		t.Fatalf("usage total %d, want 150", usage.Total)
	}
	if got := calls.purposes(); len(got) != 1 || got[0] != PurposeDeckGenerate {
		t.Fatalf("call log purposes %v", got)
	}
}

func TestInvokeRepairSucceeds(t *testing.T) {
	ai := &fakeAI{responses: []fakeAIResponse{
		{obj: map[string]any{"ok": false}, raw: `{"ok":false}`},
		{obj: map[string]any{"ok": true}, raw: `{"ok":true}`},
	}}
	calls := &fakeCallLogRepo{}
	engine := NewGenerationEngine(testLogger(t), ai, testBreaker(t), calls)

	usage, err := engine.Invoke(context.Background(), testSpec())
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if ai.callCount() != 2 {
		t.Fatalf("made %d upstream calls, want 2", ai.callCount())
	}
	if usage.Total != 300 {
		t.Fatalf("usage total %d, want 300 (both attempts accounted)", usage.Total)
	}
	if got := calls.purposes(); len(got) != 2 || got[1] != PurposeRepair {
		t.Fatalf("call log purposes %v", got)
	}
	// The corrective call quotes the invalid output and the specific issues.
	repairUser := ai.users[1]
	if !strings.Contains(repairUser, `{"ok":false}`) {
		t.Fatal("repair prompt does not quote the invalid output")
	}
	if !strings.Contains(repairUser, "ok field missing or false") {
		t.Fatal("repair prompt does not list the validation issues")
	}
}

func TestInvokeRepairExhaustedFailsValidation(t *testing.T) {
	ai := &fakeAI{responses: []fakeAIResponse{
		{obj: map[string]any{"ok": false}, raw: `{"ok":false}`},
		{obj: map[string]any{"ok": false}, raw: `{"ok":false}`},
		{obj: map[string]any{"ok": true}, raw: `{"ok":true}`}, // must never be reached
	}}
	engine := NewGenerationEngine(testLogger(t), ai, testBreaker(t), &fakeCallLogRepo{})

	_, err := engine.Invoke(context.Background(), testSpec())
	if !apierr.Is(err, apierr.CodeSchemaValidationFailed) {
		t.Fatalf("got %v, want SCHEMA_VALIDATION_FAILED", err)
	}
	if ai.callCount() != 2 {
		t.Fatalf("made %d upstream calls, want exactly 2", ai.callCount())
	}
}

func TestInvokeTimeoutTripsBreaker(t *testing.T) {
	ai := &fakeAI{responses: []fakeAIResponse{
		{err: context.DeadlineExceeded},
	}}
	brk := breaker.New(testLogger(t), "test", breaker.Config{
		FailureThreshold: 1,
		Window:           time.Minute,
		Cooldown:         30 * time.Second,
	})
	engine := NewGenerationEngine(testLogger(t), ai, brk, &fakeCallLogRepo{})

	_, err := engine.Invoke(context.Background(), testSpec())
	if !apierr.Is(err, apierr.CodeUpstreamTimeout) {
		t.Fatalf("got %v, want UPSTREAM_TIMEOUT", err)
	}
	if brk.State() != breaker.Open {
		t.Fatalf("breaker state %v, want Open after threshold failure", brk.State())
	}

	// While open, no upstream call happens at all.
	_, err = engine.Invoke(context.Background(), testSpec())
	if !apierr.Is(err, apierr.CodeCircuitOpen) {
		t.Fatalf("got %v, want CIRCUIT_OPEN", err)
	}
	if ai.callCount() != 1 {
		t.Fatalf("made %d upstream calls, want 1 (open breaker must short-circuit)", ai.callCount())
	}
}

func TestInvokeNonJSONOutputGetsRepaired(t *testing.T) {
	// A transport success whose body is not valid JSON arrives with a nil
	// object; the repair pass still gets the raw text to quote.
	ai := &fakeAI{responses: []fakeAIResponse{
		{obj: nil, raw: "not json at all"},
		{obj: map[string]any{"ok": true}, raw: `{"ok":true}`},
	}}
	engine := NewGenerationEngine(testLogger(t), ai, testBreaker(t), &fakeCallLogRepo{})

	_, err := engine.Invoke(context.Background(), testSpec())
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !strings.Contains(ai.users[1], "not json at all") {
		t.Fatal("repair prompt does not quote the malformed output")
	}
}
