// Package sqlite is the offline gateway: the same collections the hosted
// backend serves, stored in a local SQLite file. There is no remote account
// in this mode, so a single implicit local user is always signed in and the
// credential operations are no-ops.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"caixamei/internal/core"
	"caixamei/internal/gateway"

	_ "modernc.org/sqlite"
)

// LocalUserID is the implicit owner of every record in offline mode.
const LocalUserID = "local"

type Repository struct {
	db *sql.DB
}

var _ gateway.Gateway = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- Auth: permanently signed in as the local user ---

func (r *Repository) CurrentUserID(_ context.Context) (string, bool) {
	return LocalUserID, true
}

func (r *Repository) SignIn(_ context.Context, _, _ string) error  { return nil }
func (r *Repository) SignOut(_ context.Context) error              { return nil }
func (r *Repository) SignUp(_ context.Context, _, _ string) error  { return nil }
func (r *Repository) RequestPasswordReset(_ context.Context, _ string) error {
	return nil
}

// OnSessionChange registers fn, but the local session never changes, so it
// never fires.
func (r *Repository) OnSessionChange(fn func(loggedIn bool)) func() {
	return func() {}
}

// --- Collections ---

func (r *Repository) Transactions() gateway.Collection[core.Transaction] {
	return txTable{r.db}
}

func (r *Repository) Categories() gateway.Collection[core.Category] {
	return catTable{r.db}
}

type txTable struct{ db *sql.DB }

func (t txTable) List(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT id, date, type, category, description, amount, user_id
		 FROM transactions WHERE user_id = ? ORDER BY date ASC, id ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var tx core.Transaction
		var kind string
		if err := rows.Scan(&tx.ID, &tx.Date, &kind, &tx.Category, &tx.Description, &tx.Amount, &tx.OwnerID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Kind = core.Kind(kind)
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (t txTable) Insert(ctx context.Context, record core.Transaction) error {
	if err := record.Validate(); err != nil {
		return err
	}
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO transactions (date, type, category, description, amount, user_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.Date, string(record.Kind), record.Category, record.Description, record.Amount, record.OwnerID)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (t txTable) Update(ctx context.Context, id int64, fields map[string]any) error {
	return patchRow(ctx, t.db, "transactions", id, fields,
		[]string{"date", "type", "category", "description", "amount"})
}

func (t txTable) Delete(ctx context.Context, id int64) error {
	if _, err := t.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

type catTable struct{ db *sql.DB }

func (t catTable) List(ctx context.Context, ownerID string) ([]core.Category, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT id, name, type, user_id FROM categories WHERE user_id = ? ORDER BY name ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var cat core.Category
		var kind string
		if err := rows.Scan(&cat.ID, &cat.Name, &kind, &cat.OwnerID); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cat.Kind = core.Kind(kind)
		out = append(out, cat)
	}
	return out, rows.Err()
}

func (t catTable) Insert(ctx context.Context, record core.Category) error {
	if err := record.Validate(); err != nil {
		return err
	}
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO categories (name, type, user_id) VALUES (?, ?, ?)`,
		record.Name, string(record.Kind), record.OwnerID)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (t catTable) Update(ctx context.Context, id int64, fields map[string]any) error {
	return patchRow(ctx, t.db, "categories", id, fields, []string{"name", "type"})
}

func (t catTable) Delete(ctx context.Context, id int64) error {
	if _, err := t.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// patchRow builds an UPDATE from the allowed subset of fields. Unknown keys
// are ignored rather than erroring, matching the remote's partial-update
// behavior.
func patchRow(ctx context.Context, db *sql.DB, table string, id int64, fields map[string]any, allowed []string) error {
	cols := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, col := range allowed {
		v, ok := fields[col]
		if !ok {
			continue
		}
		if kind, isKind := v.(core.Kind); isKind {
			v = string(kind)
		}
		cols = append(cols, col+" = ?")
		args = append(args, v)
	}
	if len(cols) == 0 {
		return nil
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(cols, ", "))
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

// --- Profiles ---

func (r *Repository) Profiles() gateway.Profiles {
	return profileTable{r.db}
}

type profileTable struct{ db *sql.DB }

func (p profileTable) Get(ctx context.Context, userID string) (core.Profile, bool, error) {
	var prof core.Profile
	err := p.db.QueryRowContext(ctx,
		`SELECT user_id, full_name, company_name FROM profiles WHERE user_id = ?`, userID).
		Scan(&prof.UserID, &prof.FullName, &prof.CompanyName)
	if err == sql.ErrNoRows {
		return core.Profile{}, false, nil
	}
	if err != nil {
		return core.Profile{}, false, fmt.Errorf("get profile: %w", err)
	}
	return prof, true, nil
}

func (p profileTable) Upsert(ctx context.Context, prof core.Profile) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, full_name, company_name) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET full_name = excluded.full_name, company_name = excluded.company_name`,
		prof.UserID, prof.FullName, prof.CompanyName)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
