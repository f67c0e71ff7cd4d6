package userdir

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveForwardsBearerAndReturnsFirstname(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"firstname":"Sabit","lastname":"K","username":"sabit"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	name, err := c.ResolveByDisplayName(context.Background(), "tok-123", "Sabit")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if name != "Sabit" {
		t.Fatalf("want Sabit, got %q", name)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("bearer not forwarded: %q", gotAuth)
	}
	if gotPath != "/users/firstname/Sabit" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
}

func TestResolveNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	if _, err := c.ResolveByDisplayName(context.Background(), "tok", "Ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}

func TestResolveUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	if _, err := c.ResolveByDisplayName(context.Background(), "tok", "Sabit"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
}

func TestResolveUnreachableDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c, _ := NewClient(srv.URL)
	if _, err := c.ResolveByDisplayName(context.Background(), "tok", "Sabit"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
}

func TestResolveEmptyName(t *testing.T) {
	c, _ := NewClient("http://directory.local")
	if _, err := c.ResolveByDisplayName(context.Background(), "tok", "  "); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}

func TestNewClientRequiresBase(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("want error for empty base url")
	}
}
