package cookiestore

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/warpdl/cookiebridge/pkg/credman/encryption"
	"github.com/warpdl/cookiebridge/pkg/logger"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS cookies (
    name   TEXT    NOT NULL,
    domain TEXT    NOT NULL,
    path   TEXT    NOT NULL,
    url    TEXT    NOT NULL,
    value  BLOB    NOT NULL,
    seq    INTEGER NOT NULL,
    PRIMARY KEY (name, domain, path)
)`

const upsertCookie = `
INSERT INTO cookies (name, domain, path, url, value, seq)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (name, domain, path)
DO UPDATE SET url = excluded.url, value = excluded.value, seq = excluded.seq`

// keyPurpose binds the derived key to this table.
const keyPurpose = "cookiebridge cookie store v1"

// SQLiteOptions configures OpenSQLiteJar.
type SQLiteOptions struct {
	// MasterKey seals the stored Set-Cookie strings. Required.
	MasterKey []byte
	// Eager writes every cookie through immediately instead of buffering
	// until Flush. Use it for capability sets without flush.
	Eager bool
	// Logger may be nil.
	Logger logger.Logger
}

// SQLiteJar is a MemoryJar persisted to a SQLite database. The original
// Set-Cookie strings are stored sealed and replayed into memory on open,
// so the jar's matching and expiry rules apply unchanged after restart.
type SQLiteJar struct {
	*MemoryJar
	db    *sql.DB
	key   []byte
	eager bool
	log   logger.Logger

	// mu serializes database access with the pending buffer.
	mu      sync.Mutex
	pending []record
	seq     int64
	closed  bool
}

type record struct {
	key entryKey
	url string
	raw string
	seq int64
}

// OpenSQLiteJar opens (or creates) the cookie database at path and loads
// its cookies.
func OpenSQLiteJar(ctx context.Context, path string, opts SQLiteOptions) (*SQLiteJar, error) {
	key, err := encryption.DeriveKey(opts.MasterKey, keyPurpose)
	if err != nil {
		return nil, err
	}
	dsn := "file:" + filepath.ToSlash(path) + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cookie database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cookie table: %w", err)
	}

	l := opts.Logger
	if l == nil {
		l = logger.NewNopLogger()
	}
	j := &SQLiteJar{
		MemoryJar: NewMemoryJar(),
		db:        db,
		key:       key,
		eager:     opts.Eager,
		log:       l,
	}
	if err := j.load(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func (j *SQLiteJar) load(ctx context.Context) error {
	rows, err := j.db.QueryContext(ctx, `SELECT name, domain, path, url, value, seq FROM cookies ORDER BY seq ASC`)
	if err != nil {
		return fmt.Errorf("query cookies: %w", err)
	}
	defer rows.Close()

	var (
		loaded int
		stale  []entryKey
	)
	for rows.Next() {
		var (
			key    entryKey
			rawURL string
			sealed []byte
			seq    int64
		)
		if err := rows.Scan(&key.name, &key.domain, &key.path, &rawURL, &sealed, &seq); err != nil {
			return fmt.Errorf("scan cookie row: %w", err)
		}
		j.seq = seq
		raw, err := encryption.Open(sealed, j.key)
		if err != nil {
			return fmt.Errorf("decrypt cookie %q for %s: %w", key.name, key.domain, err)
		}
		u, err := url.Parse(rawURL)
		if err != nil {
			stale = append(stale, key)
			continue
		}
		pc, ok := parseCookie(u, raw)
		if !ok {
			stale = append(stale, key)
			continue
		}
		j.MemoryJar.set(u, pc)
		if !j.MemoryJar.alive(pc.key, pc.sample) {
			stale = append(stale, key)
			continue
		}
		loaded++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate cookie rows: %w", err)
	}
	rows.Close()

	for _, key := range stale {
		if _, err := j.db.ExecContext(ctx, `DELETE FROM cookies WHERE name = ? AND domain = ? AND path = ?`,
			key.name, key.domain, key.path); err != nil {
			return fmt.Errorf("prune cookie %q: %w", key.name, err)
		}
	}
	j.log.Info("loaded %d cookies, pruned %d", loaded, len(stale))
	return nil
}

// SetCookie implements Jar. In eager mode the cookie is written before
// SetCookie returns.
func (j *SQLiteJar) SetCookie(u *url.URL, raw string) error {
	pc, ok := parseCookie(u, raw)
	if !ok {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrClosed
	}
	j.seq++
	rec := record{key: pc.key, url: u.String(), raw: persistedForm(raw, pc.cookie.MaxAge, time.Now()), seq: j.seq}
	j.MemoryJar.set(u, pc)
	if !j.eager {
		j.pending = append(j.pending, rec)
		return nil
	}
	return j.write([]record{rec})
}

// persistedForm pins a positive Max-Age to an absolute Expires so the
// lifetime keeps counting from the original write when the row is
// replayed on open. Other attributes are kept as written.
func persistedForm(raw string, maxAge int, now time.Time) string {
	if maxAge <= 0 {
		return raw
	}
	parts := strings.Split(raw, ";")
	kept := []string{parts[0]}
	for _, attr := range parts[1:] {
		name, _, _ := strings.Cut(strings.TrimSpace(attr), "=")
		if n := strings.ToLower(strings.TrimSpace(name)); n == "max-age" || n == "expires" {
			continue
		}
		kept = append(kept, attr)
	}
	expires := now.Add(time.Duration(maxAge) * time.Second).UTC().Format(http.TimeFormat)
	return strings.Join(kept, ";") + "; Expires=" + expires
}

// Flush implements Flusher. A failed batch stays pending.
func (j *SQLiteJar) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrClosed
	}
	return j.flushLocked()
}

func (j *SQLiteJar) flushLocked() error {
	if len(j.pending) == 0 {
		return nil
	}
	if err := j.write(j.pending); err != nil {
		return err
	}
	j.pending = nil
	return nil
}

func (j *SQLiteJar) write(batch []record) error {
	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("begin cookie write: %w", err)
	}
	stmt, err := tx.Prepare(upsertCookie)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare cookie write: %w", err)
	}
	defer stmt.Close()

	for _, rec := range batch {
		sealed, err := encryption.Seal(rec.raw, j.key)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("seal cookie %q: %w", rec.key.name, err)
		}
		if _, err := stmt.Exec(rec.key.name, rec.key.domain, rec.key.path, rec.url, sealed, rec.seq); err != nil {
			tx.Rollback()
			return fmt.Errorf("write cookie %q: %w", rec.key.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cookie write: %w", err)
	}
	return nil
}

// RemoveAllCookies implements Jar.
func (j *SQLiteJar) RemoveAllCookies() error {
	_, err := j.removeAll()
	return err
}

// RemoveAllCookiesAsync implements AsyncRemover.
func (j *SQLiteJar) RemoveAllCookiesAsync(done func(removed bool, err error)) {
	go func() {
		done(j.removeAll())
	}()
}

func (j *SQLiteJar) removeAll() (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return false, ErrClosed
	}
	j.pending = nil
	removed := j.MemoryJar.removeAll()
	if _, err := j.db.Exec(`DELETE FROM cookies`); err != nil {
		return removed, fmt.Errorf("delete cookies: %w", err)
	}
	return removed, nil
}

// Close writes pending cookies and closes the database. Safe to call
// more than once.
func (j *SQLiteJar) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	flushErr := j.flushLocked()
	if err := j.db.Close(); err != nil {
		return err
	}
	return flushErr
}

var (
	_ Jar          = (*SQLiteJar)(nil)
	_ Flusher      = (*SQLiteJar)(nil)
	_ AsyncRemover = (*SQLiteJar)(nil)
)
