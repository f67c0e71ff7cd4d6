// Package userdir resolves customer display names against the user
// directory service. The caller's bearer token is forwarded verbatim, so
// the directory applies its own access rules to the lookup.
package userdir

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrUserNotFound = errors.New("userdir: user not found")
	ErrUnavailable  = errors.New("userdir: directory unavailable")
)

// Client talks to the user directory over HTTP.
type Client struct {
	base string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient builds a directory client for the given base URL.
func NewClient(base string, opts ...Option) (*Client, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return nil, errors.New("userdir: base url required")
	}
	c := &Client{
		base: base,
		http: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type userRecord struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Username  string `json:"username"`
}

// ResolveByDisplayName looks up a user by first name and returns the
// directory's canonical first name for that user. A 404 from the directory
// maps to ErrUserNotFound; any other failure maps to ErrUnavailable.
func (c *Client) ResolveByDisplayName(ctx context.Context, bearer, firstname string) (string, error) {
	firstname = strings.TrimSpace(firstname)
	if firstname == "" {
		return "", ErrUserNotFound
	}

	endpoint := c.base + "/users/firstname/" + url.PathEscape(firstname)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", ErrUserNotFound
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var rec userRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if strings.TrimSpace(rec.Firstname) == "" {
		return "", ErrUserNotFound
	}
	return rec.Firstname, nil
}
