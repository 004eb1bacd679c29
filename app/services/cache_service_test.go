package services

import (
	"context"
	"testing"
	"time"

	"github.com/referral-checker/app/models"
)

func TestCacheService_GetSet(t *testing.T) {
	ctx := context.Background()
	cs := NewCacheService(time.Minute)

	if _, found, err := cs.Get(ctx, "k"); found || err != nil {
		t.Fatalf("empty cache: found=%v err=%v", found, err)
	}

	want := &models.AnalysisResult{InputHash: "k", TokenLabel: "UXUY"}
	if err := cs.Set(ctx, "k", want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, found, err := cs.Get(ctx, "k")
	if err != nil || !found || got != want {
		t.Fatalf("Get: got=%v found=%v err=%v", got, found, err)
	}

	if ok, _ := cs.Exists(ctx, "k"); !ok {
		t.Errorf("Exists should be true")
	}
	if ttl, _ := cs.GetTTL(ctx, "k"); ttl <= 0 || ttl > time.Minute {
		t.Errorf("GetTTL = %v", ttl)
	}

	stats, _ := cs.GetStats(ctx)
	if stats.TotalHits != 1 || stats.TotalMiss != 1 || stats.HitRate != 0.5 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCacheService_Expiry(t *testing.T) {
	ctx := context.Background()
	cs := NewCacheService(time.Millisecond)

	_ = cs.Set(ctx, "k", &models.AnalysisResult{})
	time.Sleep(5 * time.Millisecond)

	if _, found, _ := cs.Get(ctx, "k"); found {
		t.Errorf("expired item should miss")
	}

	cs.CleanupExpired()
	if cs.Size() != 0 {
		t.Errorf("Size = %d after cleanup", cs.Size())
	}
}

func TestCacheService_DeleteClear(t *testing.T) {
	ctx := context.Background()
	cs := NewCacheService(time.Minute)

	_ = cs.Set(ctx, "a", &models.AnalysisResult{})
	_ = cs.Set(ctx, "b", &models.AnalysisResult{})

	_ = cs.Delete(ctx, "a")
	if ok, _ := cs.Exists(ctx, "a"); ok {
		t.Errorf("a should be deleted")
	}

	_ = cs.Clear(ctx)
	if cs.Size() != 0 {
		t.Errorf("Size = %d after Clear", cs.Size())
	}
}
