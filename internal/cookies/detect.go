package cookies

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	_ "modernc.org/sqlite"
)

var sqliteMagic = []byte("SQLite format 3\x00")

var (
	ErrEmptyFile         = errors.New("cookie file is empty")
	ErrIsDirectory       = errors.New("cookie path is a directory")
	ErrUnsupportedFormat = errors.New("unsupported cookie store format")
)

// sniff classifies the file at path as SQLite or Netscape text without
// opening a database.
func sniff(fsys afero.Fs, path string) (sqlite bool, f Format, err error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return false, FormatUnknown, fmt.Errorf("cookie file %s: %w", path, err)
	}
	if info.IsDir() {
		return false, FormatUnknown, fmt.Errorf("%s: %w", path, ErrIsDirectory)
	}
	if info.Size() == 0 {
		return false, FormatUnknown, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}

	file, err := fsys.Open(path)
	if err != nil {
		return false, FormatUnknown, err
	}
	defer file.Close()

	br := bufio.NewReader(file)
	header, err := br.Peek(len(sqliteMagic))
	if err == nil && bytes.Equal(header, sqliteMagic) {
		return true, FormatUnknown, nil
	}
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, FormatUnknown, err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "# Netscape HTTP Cookie File" || line == "# HTTP Cookie File" {
		return false, FormatNetscape, nil
	}
	return false, FormatUnknown, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// sqliteFormat tells Firefox and Chromium databases apart by their tables.
func sqliteFormat(ctx context.Context, db *sql.DB) (Format, error) {
	var name string
	err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name='moz_cookies'`).Scan(&name)
	if err == nil {
		return FormatFirefox, nil
	}
	err = db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name='cookies'`).Scan(&name)
	if err == nil {
		return FormatChrome, nil
	}
	return FormatUnknown, ErrUnsupportedFormat
}

// DetectFormat reports the format of the cookie store at path.
func DetectFormat(ctx context.Context, fsys afero.Fs, path string) (Format, error) {
	isSQLite, f, err := sniff(fsys, path)
	if err != nil || !isSQLite {
		return f, err
	}
	copyPath, cleanup, err := snapshot(fsys, path)
	if err != nil {
		return FormatUnknown, err
	}
	defer cleanup()
	db, err := openSnapshot(copyPath)
	if err != nil {
		return FormatUnknown, err
	}
	defer db.Close()
	return sqliteFormat(ctx, db)
}

func openSnapshot(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open cookie database: %w", err)
	}
	return db, nil
}
