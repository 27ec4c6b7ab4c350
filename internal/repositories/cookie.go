package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"
)

// CookieRepository persists cookies per host.
type CookieRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewCookieRepository creates a new CookieRepository with the given database connection
func NewCookieRepository(db *sql.DB) *CookieRepository {
	return &CookieRepository{db: db, now: time.Now}
}

// Save upserts cookies for host. Cookies that are deleted (negative MaxAge or past Expires) are removed instead.
func (r *CookieRepository) Save(ctx context.Context, host string, cookies []*http.Cookie) error {
	now := r.now()

	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, c := range cookies {
			path := c.Path
			if path == "" {
				path = "/"
			}

			expires := c.Expires
			if c.MaxAge > 0 {
				expires = now.Add(time.Duration(c.MaxAge) * time.Second)
			}

			if c.MaxAge < 0 || (!expires.IsZero() && !expires.After(now)) {
				if _, err := tx.ExecContext(ctx,
					`DELETE FROM cookies WHERE host = ? AND name = ? AND path = ?`,
					host, c.Name, path,
				); err != nil {
					return fmt.Errorf("failed to delete cookie %s: %w", c.Name, err)
				}
				continue
			}

			query := `
				INSERT INTO cookies (host, name, path, value, domain, expires_at, secure, http_only, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (host, name, path) DO UPDATE SET
					value = excluded.value,
					domain = excluded.domain,
					expires_at = excluded.expires_at,
					secure = excluded.secure,
					http_only = excluded.http_only,
					updated_at = excluded.updated_at
			`
			if _, err := tx.ExecContext(ctx, query,
				host, c.Name, path, c.Value, c.Domain, nullTime(expires), c.Secure, c.HttpOnly, now.UTC(), now.UTC(),
			); err != nil {
				return fmt.Errorf("failed to save cookie %s: %w", c.Name, err)
			}
		}
		return nil
	})
}

// List returns the unexpired cookies stored for host.
func (r *CookieRepository) List(ctx context.Context, host string) ([]*http.Cookie, error) {
	query := `
		SELECT name, path, value, domain, expires_at, secure, http_only
		FROM cookies
		WHERE host = ? AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY name, path
	`

	rows, err := r.db.QueryContext(ctx, query, host, r.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list cookies: %w", err)
	}
	defer rows.Close()

	var cookies []*http.Cookie
	for rows.Next() {
		var (
			c       http.Cookie
			expires sql.NullTime
		)
		if err := rows.Scan(&c.Name, &c.Path, &c.Value, &c.Domain, &expires, &c.Secure, &c.HttpOnly); err != nil {
			return nil, fmt.Errorf("failed to scan cookie: %w", err)
		}
		if expires.Valid {
			c.Expires = expires.Time
		}
		cookies = append(cookies, &c)
	}
	return cookies, rows.Err()
}

// Hosts returns every host with at least one stored cookie.
func (r *CookieRepository) Hosts(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT host FROM cookies ORDER BY host`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cookie hosts: %w", err)
	}
	defer rows.Close()

	var hosts []string
	for rows.Next() {
		var host string
		if err := rows.Scan(&host); err != nil {
			return nil, fmt.Errorf("failed to scan host: %w", err)
		}
		hosts = append(hosts, host)
	}
	return hosts, rows.Err()
}

// DeleteExpired removes cookies whose expiry has passed and returns how many were removed.
func (r *CookieRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cookies WHERE expires_at IS NOT NULL AND expires_at <= ?`, r.now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cookies: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes every stored cookie.
func (r *CookieRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cookies`); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}
