package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"ordena.org/internal/order"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), mock
}

func orderColumns() []string {
	return []string{"id", "customer_name", "status", "total_price", "items", "is_deleted", "created_at", "updated_at"}
}

func itemsJSON(t *testing.T, items []order.LineItem) []byte {
	t.Helper()
	b, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("marshal items: %v", err)
	}
	return b
}

func TestFindByID(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	items := []order.LineItem{{ProductID: "p1", Name: "widget", UnitPrice: 250, Quantity: 2}}

	mock.ExpectQuery(regexp.QuoteMeta(`select id, customer_name, status, total_price, items, is_deleted, created_at, updated_at from orders where id=$1`)).
		WithArgs("ord-1").
		WillReturnRows(sqlmock.NewRows(orderColumns()).
			AddRow("ord-1", "Sabit", "PENDING", int64(500), itemsJSON(t, items), false, now, now))

	got, err := st.FindByID(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.CustomerName != "Sabit" || got.Status != order.StatusPending || got.TotalPrice != 500 {
		t.Fatalf("unexpected order: %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0].ProductID != "p1" {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFindByIDNotFound(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery(`select .+ from orders where id=\$1`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	if _, err := st.FindByID(context.Background(), "nope"); !errors.Is(err, order.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestListAppliesFilterPredicates(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now().UTC()
	status := order.StatusShipped
	min := int64(100)
	max := int64(1000)

	mock.ExpectQuery(regexp.QuoteMeta(`select id, customer_name, status, total_price, items, is_deleted, created_at, updated_at from orders where is_deleted = false and status = $1 and total_price >= $2 and total_price <= $3 order by id`)).
		WithArgs("SHIPPED", min, max).
		WillReturnRows(sqlmock.NewRows(orderColumns()).
			AddRow("ord-1", "Aliya", "SHIPPED", int64(400), []byte(`[]`), false, now, now).
			AddRow("ord-2", "Sabit", "SHIPPED", int64(900), []byte(`[]`), false, now, now))

	got, err := st.List(context.Background(), order.ListFilter{Status: &status, MinPrice: &min, MaxPrice: &max})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "ord-1" || got[1].ID != "ord-2" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListNoFilter(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(`where is_deleted = false order by id`)).
		WillReturnRows(sqlmock.NewRows(orderColumns()))

	got, err := st.List(context.Background(), order.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty, got %+v", got)
	}
}

func TestMutateLocksRowAndCommits(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`from orders where id=$1 for update`)).
		WithArgs("ord-1").
		WillReturnRows(sqlmock.NewRows(orderColumns()).
			AddRow("ord-1", "Sabit", "PENDING", int64(500), []byte(`[]`), false, now, now))
	mock.ExpectExec(regexp.QuoteMeta(`update orders`)).
		WithArgs("ord-1", "Sabit", "CANCELLED", int64(500), []byte(`[]`), true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := st.Mutate(context.Background(), "ord-1", func(o *order.Order) error {
		o.Status = order.StatusCancelled
		o.Deleted = true
		o.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if !got.Deleted || got.Status != order.StatusCancelled {
		t.Fatalf("unexpected order: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMutateRollsBackOnCallbackError(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now().UTC()
	boom := errors.New("no")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`for update`)).
		WithArgs("ord-1").
		WillReturnRows(sqlmock.NewRows(orderColumns()).
			AddRow("ord-1", "Sabit", "PENDING", int64(500), []byte(`[]`), false, now, now))
	mock.ExpectRollback()

	if _, err := st.Mutate(context.Background(), "ord-1", func(*order.Order) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("want callback error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMutateMissingOrder(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`for update`)).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	if _, err := st.Mutate(context.Background(), "nope", func(*order.Order) error { return nil }); !errors.Is(err, order.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
