package cookies

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// readFirefox returns the unexpired moz_cookies rows for domain.
func readFirefox(ctx context.Context, db *sql.DB, domain string) ([]Cookie, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT name, value, host, path, expiry, isSecure, isHttpOnly
        FROM moz_cookies
        WHERE (host = ? OR host = ? OR host LIKE ?)
          AND expiry > ?
        ORDER BY path DESC, name ASC`,
		domain, "."+domain, "%."+domain, time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("query Firefox cookies: %w", err)
	}
	defer rows.Close()

	var cookies []Cookie
	for rows.Next() {
		var (
			c              Cookie
			expiry         int64
			secure, httpOn int
		)
		if err := rows.Scan(&c.Name, &c.Value, &c.Domain, &c.Path, &expiry, &secure, &httpOn); err != nil {
			return nil, fmt.Errorf("scan Firefox cookie: %w", err)
		}
		c.Expiry = time.Unix(expiry, 0)
		c.Secure = secure != 0
		c.HttpOnly = httpOn != 0
		cookies = append(cookies, c)
	}
	return cookies, rows.Err()
}
