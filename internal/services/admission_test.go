package services

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/flashdeck-backend/internal/platform/apierr"
)

func testMemoryAdmission(t *testing.T, cfg AdmissionConfig) (*memoryAdmission, *time.Time) {
	t.Helper()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ctrl := NewMemoryAdmission(testLogger(t), cfg).(*memoryAdmission)
	ctrl.now = func() time.Time { return now }
	return ctrl, &now
}

func TestAdmitRateLimitsWithinWindow(t *testing.T) {
	ctrl, _ := testMemoryAdmission(t, AdmissionConfig{RequestsPerMinute: 3, DailyQuota: 100})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := ctrl.Admit(ctx, "caller-a", PurposeDeckGenerate); err != nil {
			t.Fatalf("request %d rejected: %v", i, err)
		}
	}
	err := ctrl.Admit(ctx, "caller-a", PurposeDeckGenerate)
	if !apierr.Is(err, apierr.CodeRateLimited) {
		t.Fatalf("got %v, want RATE_LIMITED", err)
	}
}

func TestAdmitWindowSlides(t *testing.T) {
	ctrl, now := testMemoryAdmission(t, AdmissionConfig{RequestsPerMinute: 2, DailyQuota: 100})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := ctrl.Admit(ctx, "caller-a", PurposeDeckGenerate); err != nil {
			t.Fatalf("request %d rejected: %v", i, err)
		}
	}
	if err := ctrl.Admit(ctx, "caller-a", PurposeDeckGenerate); !apierr.Is(err, apierr.CodeRateLimited) {
		t.Fatalf("got %v, want RATE_LIMITED", err)
	}

	*now = now.Add(61 * time.Second)
	if err := ctrl.Admit(ctx, "caller-a", PurposeDeckGenerate); err != nil {
		t.Fatalf("request after window slide rejected: %v", err)
	}
}

func TestAdmitDailyQuota(t *testing.T) {
	ctrl, now := testMemoryAdmission(t, AdmissionConfig{RequestsPerMinute: 100, DailyQuota: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := ctrl.Admit(ctx, "caller-a", PurposeExampleGenerate); err != nil {
			t.Fatalf("request %d rejected: %v", i, err)
		}
		*now = now.Add(2 * time.Minute)
	}
	err := ctrl.Admit(ctx, "caller-a", PurposeExampleGenerate)
	if !apierr.Is(err, apierr.CodeQuotaExceeded) {
		t.Fatalf("got %v, want QUOTA_EXCEEDED", err)
	}

	// Quota resets at the UTC day boundary.
	*now = now.Add(24 * time.Hour)
	if err := ctrl.Admit(ctx, "caller-a", PurposeExampleGenerate); err != nil {
		t.Fatalf("request on next day rejected: %v", err)
	}
}

func TestAdmitCallersAndOperationsIndependent(t *testing.T) {
	ctrl, _ := testMemoryAdmission(t, AdmissionConfig{RequestsPerMinute: 1, DailyQuota: 100})
	ctx := context.Background()

	if err := ctrl.Admit(ctx, "caller-a", PurposeDeckGenerate); err != nil {
		t.Fatalf("caller-a rejected: %v", err)
	}
	if err := ctrl.Admit(ctx, "caller-b", PurposeDeckGenerate); err != nil {
		t.Fatalf("caller-b should have its own window: %v", err)
	}
	if err := ctrl.Admit(ctx, "caller-a", PurposeExampleGenerate); err != nil {
		t.Fatalf("other operation should have its own window: %v", err)
	}
	if err := ctrl.Admit(ctx, "caller-a", PurposeDeckGenerate); !apierr.Is(err, apierr.CodeRateLimited) {
		t.Fatalf("got %v, want RATE_LIMITED for exhausted window", err)
	}
}

func TestAdmitRejectedRequestsDoNotConsumeQuota(t *testing.T) {
	ctrl, now := testMemoryAdmission(t, AdmissionConfig{RequestsPerMinute: 1, DailyQuota: 2})
	ctx := context.Background()

	if err := ctrl.Admit(ctx, "caller-a", PurposeDeckGenerate); err != nil {
		t.Fatalf("first request rejected: %v", err)
	}
	// Burst rejections while rate-limited must not count against the day.
	for i := 0; i < 5; i++ {
		if err := ctrl.Admit(ctx, "caller-a", PurposeDeckGenerate); !apierr.Is(err, apierr.CodeRateLimited) {
			t.Fatalf("got %v, want RATE_LIMITED", err)
		}
	}

	*now = now.Add(2 * time.Minute)
	if err := ctrl.Admit(ctx, "caller-a", PurposeDeckGenerate); err != nil {
		t.Fatalf("second admitted request rejected: %v", err)
	}
}
