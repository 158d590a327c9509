package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/screen"
	"github.com/carddemo/terminal/internal/core/screens"
	"github.com/carddemo/terminal/internal/core/session"
	"github.com/carddemo/terminal/internal/infrastructure/gateway"
)

func TestControllersArePerBrowserAndScreen(t *testing.T) {
	store := session.NewStore(session.NewMemoryRepository())
	cs, unsubscribe := NewControllers(store)
	defer unsubscribe()

	catalog := screens.NewCatalog(gateway.NewFixture())
	pay, _ := catalog.ByPath("/billing/pay")
	view, _ := catalog.ByPath("/accounts/view")

	a := cs.Get("browser-a", pay)
	if cs.Get("browser-a", pay) != a {
		t.Fatal("expected the same controller on repeated access")
	}
	if cs.Get("browser-a", view) == a {
		t.Fatal("screens must not share a controller")
	}
	if cs.Get("browser-b", pay) == a {
		t.Fatal("browser sessions must not share a controller")
	}
	if cs.Len() != 2 {
		t.Fatalf("expected 2 browser sessions, got %d", cs.Len())
	}
}

func TestControllersDroppedOnLogout(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore(session.NewMemoryRepository())
	cs, unsubscribe := NewControllers(store)
	defer unsubscribe()

	catalog := screens.NewCatalog(gateway.NewFixture())
	pay, _ := catalog.ByPath("/billing/pay")

	ctl := cs.Get("browser-a", pay)
	if !ctl.SetField("accountId", "00000000001") {
		t.Fatal("field should be accepted")
	}

	if err := store.Login(ctx, "browser-a", &domain.Session{UserID: "USER001", Role: domain.RoleBackOffice}); err != nil {
		t.Fatal(err)
	}
	if cs.Len() != 1 {
		t.Fatal("login must keep the browser's screens")
	}

	if err := store.Logout(ctx, "browser-a"); err != nil {
		t.Fatal(err)
	}
	if cs.Len() != 0 {
		t.Fatal("logout must drop the browser's screens")
	}
	if st := ctl.Snapshot(); st.Step != screen.StepInput || len(st.Fields) != 0 {
		t.Fatalf("dropped controller should be reset, got %+v", st)
	}
	if cs.Get("browser-a", pay) == ctl {
		t.Fatal("a fresh controller is expected after logout")
	}
}

func TestControllersSweepIdle(t *testing.T) {
	store := session.NewStore(session.NewMemoryRepository())
	cs, unsubscribe := NewControllers(store)
	defer unsubscribe()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cs.now = func() time.Time { return now }

	catalog := screens.NewCatalog(gateway.NewFixture())
	pay, _ := catalog.ByPath("/billing/pay")

	idle := cs.Get("browser-idle", pay)
	idle.SetField("accountId", "00000000001")
	now = now.Add(20 * time.Minute)
	active := cs.Get("browser-active", pay)

	if n := cs.Sweep(15 * time.Minute); n != 1 {
		t.Fatalf("expected 1 evicted, got %d", n)
	}
	if cs.Len() != 1 {
		t.Fatalf("expected the active browser to remain, got %d", cs.Len())
	}
	if st := idle.Snapshot(); len(st.Fields) != 0 {
		t.Errorf("evicted controller should be reset, got %+v", st.Fields)
	}
	if cs.Get("browser-active", pay) != active {
		t.Error("active browser must keep its controller")
	}

	now = now.Add(time.Hour)
	if n := cs.Sweep(15 * time.Minute); n != 1 || cs.Len() != 0 {
		t.Fatalf("expected everything evicted, got %d left", cs.Len())
	}
}

func TestControllersRunEvictionStopsWithContext(t *testing.T) {
	store := session.NewStore(session.NewMemoryRepository())
	cs, unsubscribe := NewControllers(store)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cs.RunEviction(ctx, time.Millisecond, zerolog.Nop())
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("eviction loop should stop on cancel")
	}
}
