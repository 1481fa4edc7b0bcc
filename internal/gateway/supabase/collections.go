package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"caixamei/internal/core"
	"caixamei/internal/gateway"
)

const (
	tableTransactions = "transactions"
	tableCategories   = "categories"
	tableProfiles     = "profiles"
)

func (c *Client) Transactions() gateway.Collection[core.Transaction] {
	return txCollection{c}
}

func (c *Client) Categories() gateway.Collection[core.Category] {
	return catCollection{c}
}

func (c *Client) Profiles() gateway.Profiles {
	return profileStore{c}
}

type txCollection struct{ c *Client }

func (t txCollection) List(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	query := "select=*&user_id=eq." + url.QueryEscape(ownerID) + "&order=date.asc"
	var rows []txRecord
	if err := t.c.restSelect(ctx, tableTransactions, query, &rows); err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := row.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (t txCollection) Insert(ctx context.Context, record core.Transaction) error {
	return t.c.restInsert(ctx, tableTransactions, txPayload(record))
}

func (t txCollection) Update(ctx context.Context, id int64, fields map[string]any) error {
	return t.c.restUpdate(ctx, tableTransactions, id, normalizeFields(fields))
}

func (t txCollection) Delete(ctx context.Context, id int64) error {
	return t.c.restDelete(ctx, tableTransactions, id)
}

type catCollection struct{ c *Client }

func (t catCollection) List(ctx context.Context, ownerID string) ([]core.Category, error) {
	query := "select=*&user_id=eq." + url.QueryEscape(ownerID) + "&order=name.asc"
	var rows []catRecord
	if err := t.c.restSelect(ctx, tableCategories, query, &rows); err != nil {
		return nil, err
	}
	out := make([]core.Category, 0, len(rows))
	for _, row := range rows {
		cat, err := row.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, nil
}

func (t catCollection) Insert(ctx context.Context, record core.Category) error {
	return t.c.restInsert(ctx, tableCategories, catPayload(record))
}

func (t catCollection) Update(ctx context.Context, id int64, fields map[string]any) error {
	return t.c.restUpdate(ctx, tableCategories, id, normalizeFields(fields))
}

func (t catCollection) Delete(ctx context.Context, id int64) error {
	return t.c.restDelete(ctx, tableCategories, id)
}

type profileStore struct{ c *Client }

func (p profileStore) Get(ctx context.Context, userID string) (core.Profile, bool, error) {
	query := "select=*&id=eq." + url.QueryEscape(userID)
	var rows []profileRecord
	if err := p.c.restSelect(ctx, tableProfiles, query, &rows); err != nil {
		return core.Profile{}, false, err
	}
	if len(rows) == 0 {
		return core.Profile{}, false, nil
	}
	return rows[0].toCore(), true, nil
}

func (p profileStore) Upsert(ctx context.Context, prof core.Profile) error {
	payload := map[string]any{
		"id":           prof.UserID,
		"full_name":    prof.FullName,
		"company_name": prof.CompanyName,
	}
	headers := map[string]string{
		"Prefer": "resolution=merge-duplicates,return=minimal",
	}
	status, data, err := p.c.do(ctx, http.MethodPost,
		"/rest/v1/"+tableProfiles+"?on_conflict=id", headers, []any{payload})
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return restError("upsert", tableProfiles, status, data)
	}
	return nil
}

// --- PostgREST plumbing ---

func (c *Client) restSelect(ctx context.Context, table, query string, out any) error {
	path := fmt.Sprintf("/rest/v1/%s?%s", table, query)
	status, data, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return restError("select", table, status, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s rows: %v", gateway.ErrMalformedRecord, table, err)
	}
	return nil
}

func (c *Client) restInsert(ctx context.Context, table string, payload map[string]any) error {
	headers := map[string]string{"Prefer": "return=minimal"}
	status, data, err := c.do(ctx, http.MethodPost, "/rest/v1/"+table, headers, []any{payload})
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return restError("insert", table, status, data)
	}
	return nil
}

func (c *Client) restUpdate(ctx context.Context, table string, id int64, fields map[string]any) error {
	path := fmt.Sprintf("/rest/v1/%s?id=eq.%d", table, id)
	status, data, err := c.do(ctx, http.MethodPatch, path, nil, fields)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return restError("update", table, status, data)
	}
	return nil
}

func (c *Client) restDelete(ctx context.Context, table string, id int64) error {
	path := fmt.Sprintf("/rest/v1/%s?id=eq.%d", table, id)
	status, data, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return restError("delete", table, status, data)
	}
	return nil
}
