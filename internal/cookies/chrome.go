package cookies

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// chromeEpochOffset is the number of seconds between 1601-01-01 and the
// Unix epoch. Chromium timestamps are microseconds since 1601.
const chromeEpochOffset int64 = 11_644_473_600

func chromeTime(usec int64) time.Time {
	if usec == 0 {
		return time.Time{}
	}
	return time.Unix(usec/1_000_000-chromeEpochOffset, 0)
}

func toChromeTime(t time.Time) int64 {
	return (t.Unix() + chromeEpochOffset) * 1_000_000
}

// chromeMetaVersion reads the schema version, which decides whether
// decrypted values carry a hash prefix. Missing metadata reads as 0.
func chromeMetaVersion(ctx context.Context, db *sql.DB) int64 {
	var v string
	if err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'version'`).Scan(&v); err != nil {
		return 0
	}
	n, _ := strconv.ParseInt(v, 10, 64)
	return n
}

// readChrome returns the unexpired cookies for domain. Session cookies
// are kept. Encrypted values are passed to decrypt; rows it cannot
// decrypt are skipped and counted.
func readChrome(ctx context.Context, db *sql.DB, domain string, decrypt decryptFunc) ([]Cookie, int, error) {
	meta := chromeMetaVersion(ctx, db)
	rows, err := db.QueryContext(ctx, `
        SELECT name, value, encrypted_value, host_key, path, expires_utc, is_secure, is_httponly
        FROM cookies
        WHERE (host_key = ? OR host_key = ? OR host_key LIKE ?)
          AND (expires_utc = 0 OR expires_utc > ?)
        ORDER BY path DESC, name ASC`,
		domain, "."+domain, "%."+domain, toChromeTime(time.Now()))
	if err != nil {
		return nil, 0, fmt.Errorf("query Chrome cookies: %w", err)
	}
	defer rows.Close()

	var (
		cookies []Cookie
		skipped int
	)
	for rows.Next() {
		var (
			c              Cookie
			encrypted      []byte
			expires        int64
			secure, httpOn int
		)
		if err := rows.Scan(&c.Name, &c.Value, &encrypted, &c.Domain, &c.Path, &expires, &secure, &httpOn); err != nil {
			return nil, 0, fmt.Errorf("scan Chrome cookie: %w", err)
		}
		if c.Value == "" && len(encrypted) > 0 {
			v, ok := decrypt(encrypted, meta)
			if !ok {
				skipped++
				continue
			}
			c.Value = v
		}
		c.Expiry = chromeTime(expires)
		c.Secure = secure != 0
		c.HttpOnly = httpOn != 0
		cookies = append(cookies, c)
	}
	return cookies, skipped, rows.Err()
}
