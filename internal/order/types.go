// Package order holds the order domain model and the access coordinator that
// guards every read and mutation behind token verification and the
// authorization rules.
package order

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("order: not found")
	ErrInvalidInput = errors.New("order: invalid input")
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

var validStatuses = map[Status]struct{}{
	StatusPending:   {},
	StatusConfirmed: {},
	StatusShipped:   {},
	StatusDelivered: {},
	StatusCancelled: {},
}

// ParseStatus maps a string onto the closed status set.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := validStatuses[s]; !ok {
		return "", fmt.Errorf("%w: unsupported status %q", ErrInvalidInput, raw)
	}
	return s, nil
}

// LineItem is one product position on an order. Prices are minor units.
type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Order is the persisted order record. CustomerName is the ownership
// attribute compared against the token-derived display name; Deleted is a
// one-way soft-delete flag that hides the record from list views only.
type Order struct {
	ID           string     `json:"id"`
	CustomerName string     `json:"customer_name"`
	Status       Status     `json:"status"`
	TotalPrice   int64      `json:"total_price"`
	Items        []LineItem `json:"items"`
	Deleted      bool       `json:"deleted"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Draft carries the caller-supplied order fields for create and update. The
// owner attribute is never part of a draft; it is resolved externally.
type Draft struct {
	Status     Status     `json:"status"`
	TotalPrice int64      `json:"total_price"`
	Items      []LineItem `json:"items"`
}

// Validate checks draft fields against the domain constraints.
func (d Draft) Validate() error {
	if _, ok := validStatuses[d.Status]; !ok {
		return fmt.Errorf("%w: unsupported status %q", ErrInvalidInput, d.Status)
	}
	if d.TotalPrice < 0 {
		return fmt.Errorf("%w: total_price must be >= 0", ErrInvalidInput)
	}
	for _, item := range d.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: line item quantity must be > 0", ErrInvalidInput)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("%w: line item unit_price must be >= 0", ErrInvalidInput)
		}
	}
	return nil
}

// ListFilter narrows the admin list view. Nil fields are unset; a missing
// price bound leaves that side of the range open.
type ListFilter struct {
	Status   *Status
	MinPrice *int64
	MaxPrice *int64
}

// Matches reports whether a non-deleted order satisfies the filter.
func (f ListFilter) Matches(o Order) bool {
	if o.Deleted {
		return false
	}
	if f.Status != nil && o.Status != *f.Status {
		return false
	}
	if f.MinPrice != nil && o.TotalPrice < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && o.TotalPrice > *f.MaxPrice {
		return false
	}
	return true
}

// Key is the exact cache key for the filter tuple. It carries no identity
// dimension, so cached results may only be served to callers that already
// passed the admin-only list check.
func (f ListFilter) Key() string {
	var b strings.Builder
	b.WriteString("orders:")
	if f.Status != nil {
		b.WriteString(string(*f.Status))
	}
	b.WriteByte('|')
	if f.MinPrice != nil {
		b.WriteString(strconv.FormatInt(*f.MinPrice, 10))
	}
	b.WriteByte('|')
	if f.MaxPrice != nil {
		b.WriteString(strconv.FormatInt(*f.MaxPrice, 10))
	}
	return b.String()
}
