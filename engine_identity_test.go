package firegate

import (
	"context"
	"errors"
	"testing"
)

func TestResolveAdminSynthesizedFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Admin.Username = "root"
	cfg.Admin.Email = "root@example.com"

	store := newMemStore()
	engine := newTestEngine(t, cfg, store)

	token, err := engine.jwtManager.Issue(cfg.Admin.Email, AdminUserID, true)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	before := store.readCalls
	identity, claims, err := engine.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if store.readCalls != before {
		t.Fatal("admin resolution must not touch the store")
	}
	if identity.ID != AdminUserID || !identity.Admin || !identity.Active {
		t.Fatalf("unexpected admin identity: %+v", identity)
	}
	if identity.Username != "root" || identity.Email != "root@example.com" {
		t.Fatalf("admin identity should come from config, got %+v", identity)
	}
	if claims.UserID != AdminUserID {
		t.Fatalf("expected admin user id claim, got %q", claims.UserID)
	}
}

func TestResolveDisabledAdminIsInactive(t *testing.T) {
	cfg := testConfig()
	cfg.Admin.Disabled = true

	engine := newTestEngine(t, cfg, newMemStore())

	token, err := engine.jwtManager.Issue(cfg.Admin.Email, AdminUserID, true)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	identity, _, err := engine.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if identity.Active {
		t.Fatal("disabled admin must resolve as inactive")
	}
}

func TestResolveMatchesUserByEmail(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(t, testConfig(), store)

	store.seedUser(t, engine, "u-1", UserRecord{
		Username: "alice",
		Email:    "alice@example.com",
	}, "alice-password")
	store.seedUser(t, engine, "u-2", UserRecord{
		Username: "bob",
		Email:    "bob@example.com",
		Disabled: true,
	}, "bob-password")

	token, err := engine.jwtManager.Issue("bob@example.com", "u-2", false)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	identity, _, err := engine.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if identity.ID != "u-2" || identity.Username != "bob" {
		t.Fatalf("expected bob's record, got %+v", identity)
	}
	if identity.Active {
		t.Fatal("disabled record must resolve as inactive")
	}
}

func TestResolveUnknownSubjectRejected(t *testing.T) {
	engine := newTestEngine(t, testConfig(), newMemStore())

	token, err := engine.jwtManager.Issue("ghost@example.com", "u-404", false)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, _, err := engine.Resolve(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestResolveRejectsGarbageToken(t *testing.T) {
	engine := newTestEngine(t, testConfig(), newMemStore())

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, _, err := engine.Resolve(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("token %q: expected ErrUnauthenticated, got %v", token, err)
		}
	}
}

func TestResolveDeletedUserRejectedBeforeExpiry(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(t, testConfig(), store)

	store.seedUser(t, engine, "u-1", UserRecord{Email: "alice@example.com"}, "alice-password")

	token, err := engine.jwtManager.Issue("alice@example.com", "u-1", false)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, _, err := engine.Resolve(context.Background(), token); err != nil {
		t.Fatalf("Resolve before delete failed: %v", err)
	}

	store.Delete(context.Background(), UsersPath+"/u-1")

	if _, _, err := engine.Resolve(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected rejection after deletion, got %v", err)
	}
}
