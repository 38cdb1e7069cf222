// Package ledger is the typed client for the remote ledger API.
//
// The ledger owns all raw state (groups, splits, settlements, transactions);
// this client is a read/write boundary that attaches the bearer credential,
// decodes responses and classifies every failure (see errors.go). It keeps no
// state of its own.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmynk/splitsync/internal/auth"
	"github.com/mmynk/splitsync/internal/models"
)

// Client talks to the remote ledger over REST/JSON with bearer auth.
// Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  auth.TokenSource
}

// NewClient creates a ledger client for the given base URL.
// A zero timeout defaults to 15 seconds.
func NewClient(baseURL string, tokens auth.TokenSource, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// ListGroups fetches all groups visible to the authenticated user.
func (c *Client) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := c.get(ctx, "/groups", nil, &groups, "list groups", "", ""); err != nil {
		return nil, err
	}
	return groups, nil
}

// GetGroup fetches one group by ID. Returns a NotFoundError if the group
// vanished server-side.
func (c *Client) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	if err := c.get(ctx, "/groups/"+url.PathEscape(id), nil, &group, "get group", "group", id); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListSplits fetches all bill splits (with nested participants) visible to
// the authenticated user.
func (c *Client) ListSplits(ctx context.Context) ([]models.BillSplit, error) {
	var splits []models.BillSplit
	if err := c.get(ctx, "/splits", nil, &splits, "list splits", "", ""); err != nil {
		return nil, err
	}
	return splits, nil
}

// GetSplit fetches one bill split by ID.
func (c *Client) GetSplit(ctx context.Context, id string) (*models.BillSplit, error) {
	var split models.BillSplit
	if err := c.get(ctx, "/splits/"+url.PathEscape(id), nil, &split, "get split", "split", id); err != nil {
		return nil, err
	}
	return &split, nil
}

// ListSettlements fetches all settlement records.
func (c *Client) ListSettlements(ctx context.Context) ([]models.Settlement, error) {
	var settlements []models.Settlement
	if err := c.get(ctx, "/settlements", nil, &settlements, "list settlements", "", ""); err != nil {
		return nil, err
	}
	return settlements, nil
}

// SearchUser resolves a user ID to an identity via the directory.
// Absence of a match is not an error: the result is (nil, nil).
func (c *Client) SearchUser(ctx context.Context, userID string) (*models.Identity, error) {
	query := url.Values{"q": {userID}}
	var matches []models.Identity
	err := c.get(ctx, "/splits/users/search", query, &matches, "search user", "", "")
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

// ListTransactions fetches the authenticated user's transaction feed.
func (c *Client) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := c.get(ctx, "/transactions", nil, &txns, "list transactions", "", ""); err != nil {
		return nil, err
	}
	return txns, nil
}

// CreateTransaction records a new transaction. The returned copy carries the
// server-assigned ID and timestamp.
func (c *Client) CreateTransaction(ctx context.Context, txn *models.Transaction) (*models.Transaction, error) {
	var created models.Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions", nil, txn, &created, "create transaction", "", ""); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteTransaction removes a transaction by ID.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil, nil, nil, "delete transaction", "transaction", id)
}

// CreateSettlement records a payment that clears debt on the ledger.
// Aggregates are not patched locally; callers refresh to pick up the effect.
func (c *Client) CreateSettlement(ctx context.Context, s *models.Settlement) (*models.Settlement, error) {
	var created models.Settlement
	if err := c.do(ctx, http.MethodPost, "/settlements", nil, s, &created, "create settlement", "", ""); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any, op, kind, id string) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out, op, kind, id)
}

// do performs one request/response cycle: attach the bearer credential, send,
// classify the status and decode. kind/id feed the NotFoundError when a 404
// identifies a specific entity.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, op, kind, id string) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return &AuthError{Op: op, Err: err}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ledger: %s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("ledger: %s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Op: op, Err: fmt.Errorf("server returned %s", resp.Status)}
	case resp.StatusCode == http.StatusNotFound:
		if kind == "" {
			kind = "resource"
		}
		return &NotFoundError{Kind: kind, ID: id}
	case resp.StatusCode >= 500:
		return &TransportError{Op: op, Err: fmt.Errorf("server returned %s", resp.Status)}
	case resp.StatusCode >= 400:
		return fmt.Errorf("ledger: %s: server returned %s", op, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
