package srv

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type orderedService struct {
	name  string
	order *[]string
}

func (s *orderedService) Start(ctx context.Context) error { return nil }

func (s *orderedService) Shutdown(ctx context.Context) error {
	*s.order = append(*s.order, s.name)
	return nil
}

func TestShutdownServices_WalksRegistrationOrder(t *testing.T) {
	// Wiring registers transports before resource cleanups and relies
	// on shutdown following registration order, so listeners stop
	// before the stores they depend on close.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var order []string
	services := []Service{
		&orderedService{name: "http", order: &order},
		&orderedService{name: "pool", order: &order},
		&orderedService{name: "db", order: &order},
	}

	ShutdownServices(ctx, services)

	want := []string{"http", "pool", "db"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("shutdown order = %v, want %v", order, want)
	}
}

func TestNewCleanup(t *testing.T) {
	called := false
	svc := NewCleanup(func() error {
		called = true
		return nil
	})

	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if called {
		t.Fatal("cleanup must not run on Start")
	}

	if err := svc.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !called {
		t.Error("cleanup did not run on Shutdown")
	}
}

func TestNewCleanup_PropagatesError(t *testing.T) {
	sentinel := errors.New("close failed")
	svc := NewCleanup(func() error { return sentinel })

	if err := svc.Shutdown(context.Background()); !errors.Is(err, sentinel) {
		t.Errorf("Shutdown error = %v, want %v", err, sentinel)
	}
}
