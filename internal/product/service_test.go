package product

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	t := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestCreateAndGet(t *testing.T) {
	svc := NewService(NewInMemory(), WithClock(fixedClock()))

	created, err := svc.Create(context.Background(), Draft{Name: "widget", Price: 250, Quantity: 10})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.CreatedAt != created.UpdatedAt {
		t.Fatalf("timestamps differ on create: %v %v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "widget" || got.Price != 250 || got.Quantity != 10 {
		t.Fatalf("unexpected product: %+v", got)
	}
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	svc := NewService(NewInMemory())
	cases := []Draft{
		{Name: "  ", Price: 100, Quantity: 1},
		{Name: "widget", Price: -1, Quantity: 1},
		{Name: "widget", Price: 100, Quantity: -1},
	}
	for _, d := range cases {
		if _, err := svc.Create(context.Background(), d); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("draft %+v: want ErrInvalidInput, got %v", d, err)
		}
	}
}

func TestUpdateReplacesFields(t *testing.T) {
	svc := NewService(NewInMemory(), WithClock(fixedClock()))
	created, err := svc.Create(context.Background(), Draft{Name: "widget", Price: 250, Quantity: 10})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, Draft{Name: "gadget", Price: 300, Quantity: 5})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "gadget" || updated.Price != 300 || updated.Quantity != 5 {
		t.Fatalf("unexpected product: %+v", updated)
	}
	if updated.CreatedAt != created.CreatedAt {
		t.Fatal("update must not change created_at")
	}
}

func TestUpdateMissingProduct(t *testing.T) {
	svc := NewService(NewInMemory())
	if _, err := svc.Update(context.Background(), "nope", Draft{Name: "x", Price: 1, Quantity: 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc := NewService(NewInMemory())
	created, err := svc.Create(context.Background(), Draft{Name: "widget", Price: 250, Quantity: 10})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestListSortedByID(t *testing.T) {
	svc := NewService(NewInMemory())
	for _, name := range []string{"a", "b", "c"} {
		if _, err := svc.Create(context.Background(), Draft{Name: name, Price: 1, Quantity: 1}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 products, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].ID >= got[i].ID {
			t.Fatalf("list not sorted: %s then %s", got[i-1].ID, got[i].ID)
		}
	}
}
