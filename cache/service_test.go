package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockCacheService returns canned values from every read.
type mockCacheService struct {
	result  any
	found   bool
	err     error
	calls   int
	lastTTL time.Duration
}

func (m *mockCacheService) GetOrSet(ctx context.Context, key string, factory Factory, ttl time.Duration) (any, error) {
	m.calls++
	m.lastTTL = ttl
	return m.result, m.err
}

func (m *mockCacheService) Get(ctx context.Context, key string) (any, bool) {
	return m.result, m.found
}

func (m *mockCacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) {}
func (m *mockCacheService) Remove(ctx context.Context, key string)                             {}
func (m *mockCacheService) RemoveByPrefix(ctx context.Context, prefix string)                  {}
func (m *mockCacheService) IsEnabled() bool                                                    { return true }

// passthroughCache always runs the factory.
type passthroughCache struct{ mockCacheService }

func (p *passthroughCache) GetOrSet(ctx context.Context, key string, factory Factory, ttl time.Duration) (any, error) {
	return factory(ctx)
}

func TestGetOrSet_NilInterfaceResult(t *testing.T) {
	mock := &mockCacheService{result: nil}

	type SomeInterface interface {
		DoSomething() string
	}

	result, err := GetOrSet[SomeInterface](context.Background(), mock, "test-key", func(ctx context.Context) (SomeInterface, error) {
		return nil, nil
	}, 0)

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result, got %v", result)
	}
}

func TestGetOrSet_NilPointerResult(t *testing.T) {
	type User struct{ Name string }

	mock := &mockCacheService{result: (*User)(nil)}

	result, err := GetOrSet[*User](context.Background(), mock, "test-key", func(ctx context.Context) (*User, error) {
		return nil, nil
	}, 0)

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != nil {
		t.Errorf("expected nil pointer, got %v", result)
	}
}

func TestGetOrSet_TypeAssertionFailure(t *testing.T) {
	mock := &mockCacheService{result: "not an int"}

	_, err := GetOrSet[int](context.Background(), mock, "test-key", func(ctx context.Context) (int, error) {
		return 0, nil
	}, 0)

	if !errors.Is(err, ErrInvalidResultType) {
		t.Errorf("expected ErrInvalidResultType, got %v", err)
	}
}

func TestGetOrSet_ValidResult(t *testing.T) {
	mock := &mockCacheService{result: 42}

	result, err := GetOrSet[int](context.Background(), mock, "test-key", func(ctx context.Context) (int, error) {
		return 0, nil
	}, time.Minute)

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != 42 {
		t.Errorf("expected 42, got %v", result)
	}
	if mock.lastTTL != time.Minute {
		t.Errorf("expected ttl to be forwarded, got %v", mock.lastTTL)
	}
}

func TestGetOrSet_ErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	mock := &mockCacheService{err: boom}

	_, err := GetOrSet[int](context.Background(), mock, "k", func(ctx context.Context) (int, error) {
		return 0, nil
	}, 0)

	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestGetOrSet_FactoryIsInvoked(t *testing.T) {
	svc := &passthroughCache{}

	result, err := GetOrSet[string](context.Background(), svc, "k", func(ctx context.Context) (string, error) {
		return "computed", nil
	}, 0)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "computed" {
		t.Errorf("expected computed, got %q", result)
	}
}

func TestGet_Typed(t *testing.T) {
	tests := []struct {
		name      string
		mock      *mockCacheService
		wantFound bool
		wantErr   error
		want      string
	}{
		{name: "miss", mock: &mockCacheService{}, wantFound: false},
		{name: "hit", mock: &mockCacheService{result: "v", found: true}, wantFound: true, want: "v"},
		{name: "wrong type", mock: &mockCacheService{result: 3, found: true}, wantErr: ErrInvalidResultType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found, err := Get[string](context.Background(), tt.mock, "k")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if found != tt.wantFound {
				t.Errorf("expected found=%v, got %v", tt.wantFound, found)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
