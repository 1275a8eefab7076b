package tenancy

import (
	"context"
	"errors"
	"testing"

	"github.com/looplj/tenanthub/internal/contexts"
)

func TestRunWithTenant(t *testing.T) {
	ctx := contexts.WithTenantID(context.Background(), 1)

	result, err := RunWithTenant(ctx, 2, func(ctx context.Context) (int64, error) {
		id, ok := CurrentTenantID(ctx)
		if !ok {
			t.Fatal("expected tenant id inside block")
		}

		return id, nil
	})
	if err != nil {
		t.Fatalf("RunWithTenant failed: %v", err)
	}

	if result != 2 {
		t.Errorf("expected tenant 2 inside block, got %d", result)
	}

	id, ok := CurrentTenantID(ctx)
	if !ok || id != 1 {
		t.Errorf("expected tenant 1 restored, got %d (ok=%v)", id, ok)
	}
}

func TestRunWithTenant_Nested(t *testing.T) {
	ctx := contexts.WithTenantID(context.Background(), 1)

	_, err := RunWithTenant(ctx, 2, func(ctx context.Context) (struct{}, error) {
		_, err := RunWithTenant(ctx, 3, func(ctx context.Context) (struct{}, error) {
			if id, _ := CurrentTenantID(ctx); id != 3 {
				t.Errorf("expected tenant 3 in inner block, got %d", id)
			}

			return struct{}{}, nil
		})
		if err != nil {
			return struct{}{}, err
		}

		if id, _ := CurrentTenantID(ctx); id != 2 {
			t.Errorf("expected tenant 2 restored in outer block, got %d", id)
		}

		return struct{}{}, nil
	})
	if err != nil {
		t.Fatalf("nested RunWithTenant failed: %v", err)
	}

	if id, _ := CurrentTenantID(ctx); id != 1 {
		t.Errorf("expected tenant 1 restored at top, got %d", id)
	}
}

func TestRunWithTenant_RestoresOnPanic(t *testing.T) {
	ctx := contexts.WithTenantID(context.Background(), 1)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()

		_, _ = RunWithTenant(ctx, 2, func(ctx context.Context) (struct{}, error) {
			panic("boom")
		})
	}()

	if id, ok := CurrentTenantID(ctx); !ok || id != 1 {
		t.Errorf("expected tenant 1 restored after panic, got %d (ok=%v)", id, ok)
	}
}

func TestRunWithTenant_RestoresOnError(t *testing.T) {
	ctx := contexts.WithTenantID(context.Background(), 1)

	wantErr := errors.New("store unavailable")

	_, err := RunWithTenant(ctx, 2, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected error to propagate, got %v", err)
	}

	if id, _ := CurrentTenantID(ctx); id != 1 {
		t.Errorf("expected tenant 1 restored after error, got %d", id)
	}
}

func TestRunWithoutTenant(t *testing.T) {
	ctx := contexts.WithTenantID(context.Background(), 1)

	_, err := RunWithoutTenant(ctx, func(ctx context.Context) (struct{}, error) {
		if _, ok := CurrentTenantID(ctx); ok {
			t.Error("expected no tenant inside block")
		}

		return struct{}{}, nil
	})
	if err != nil {
		t.Fatalf("RunWithoutTenant failed: %v", err)
	}

	if id, ok := CurrentTenantID(ctx); !ok || id != 1 {
		t.Errorf("expected tenant 1 restored, got %d (ok=%v)", id, ok)
	}
}

func TestClearTenant(t *testing.T) {
	ctx := contexts.WithTenantID(context.Background(), 1)

	ctx = ClearTenant(ctx)

	if _, ok := CurrentTenantID(ctx); ok {
		t.Error("expected no tenant after clear")
	}
}
