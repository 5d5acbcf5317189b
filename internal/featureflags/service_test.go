package featureflags_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/commutewise/commutewise/internal/featureflags"
)

func newTestService(repo featureflags.Repository) *featureflags.Service {
	return featureflags.NewService(featureflags.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
		CacheTTL:   1 * time.Minute,
	})
}

func TestService_GetFlag_DefaultFallback(t *testing.T) {
	service := newTestService(featureflags.NewInMemoryRepository())
	ctx := context.Background()

	flag := service.GetFlag(ctx, featureflags.FlagAltTransit)
	if flag == nil {
		t.Fatal("expected flag to be returned")
	}
	if flag.Key != featureflags.FlagAltTransit {
		t.Errorf("expected key %q, got %q", featureflags.FlagAltTransit, flag.Key)
	}
	if !flag.BoolValue(false) {
		t.Error("expected alt.transit to be enabled by default")
	}
}

func TestService_SetFlag(t *testing.T) {
	service := newTestService(featureflags.NewInMemoryRepository())
	ctx := context.Background()

	err := service.SetFlag(ctx, &featureflags.Flag{
		Key:   featureflags.FlagAltCarpool,
		Value: false,
	})
	if err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	flag := service.GetFlag(ctx, featureflags.FlagAltCarpool)
	if flag == nil {
		t.Fatal("expected flag to be returned")
	}
	if flag.BoolValue(true) {
		t.Error("expected alt.carpool to be disabled after update")
	}
}

func TestService_SetFlags(t *testing.T) {
	service := newTestService(featureflags.NewInMemoryRepository())
	ctx := context.Background()

	err := service.SetFlags(ctx, []*featureflags.Flag{
		{Key: featureflags.FlagAltTiming, Value: false},
		{Key: featureflags.FlagAltElectric, Value: false},
	})
	if err != nil {
		t.Fatalf("failed to set flags: %v", err)
	}

	if service.IsEnabled(ctx, featureflags.FlagAltTiming) {
		t.Error("expected alt.timing to be disabled")
	}
	if service.IsEnabled(ctx, featureflags.FlagAltElectric) {
		t.Error("expected alt.electric to be disabled")
	}
}

func TestService_GetAllFlags_MergesOverDefaults(t *testing.T) {
	repo := featureflags.NewInMemoryRepository()
	service := newTestService(repo)
	ctx := context.Background()

	if err := repo.SetFlag(ctx, &featureflags.Flag{Key: featureflags.FlagAltTransit, Value: false}); err != nil {
		t.Fatalf("failed to seed flag: %v", err)
	}

	flags := service.GetAllFlags(ctx)

	if flags[featureflags.FlagAltTransit].BoolValue(true) {
		t.Error("stored value should override the default")
	}
	if !flags[featureflags.FlagAltCarpool].BoolValue(false) {
		t.Error("unset flags should keep their defaults")
	}
	if len(flags) < 5 {
		t.Errorf("expected at least 5 flags, got %d", len(flags))
	}
}

func TestService_InvalidateCache(t *testing.T) {
	repo := featureflags.NewInMemoryRepository()
	service := newTestService(repo)
	ctx := context.Background()

	if err := service.SetFlag(ctx, &featureflags.Flag{Key: featureflags.FlagAltTiming, Value: false}); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	// Change the value behind the service's back, then invalidate.
	if err := repo.SetFlag(ctx, &featureflags.Flag{Key: featureflags.FlagAltTiming, Value: true}); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	service.InvalidateCache()

	if !service.IsEnabled(ctx, featureflags.FlagAltTiming) {
		t.Error("expected fresh value after cache invalidation")
	}
}

func TestService_IsAlternativeEnabled(t *testing.T) {
	service := newTestService(featureflags.NewInMemoryRepository())
	ctx := context.Background()

	if !service.IsAlternativeEnabled(ctx, "transit") {
		t.Error("expected transit alternatives enabled by default")
	}

	if err := service.SetFlag(ctx, &featureflags.Flag{Key: featureflags.FlagAltTransit, Value: false}); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	if service.IsAlternativeEnabled(ctx, "transit") {
		t.Error("expected transit alternatives disabled after update")
	}
}

func TestService_UnknownFlagDefaultsEnabled(t *testing.T) {
	service := newTestService(featureflags.NewInMemoryRepository())

	if !service.IsEnabled(context.Background(), "alt.teleport") {
		t.Error("unknown flags should default to enabled")
	}
}
