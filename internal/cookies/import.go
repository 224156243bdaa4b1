package cookies

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/warpdl/cookiebridge/pkg/logger"
)

// ErrNoBrowserStore is returned by Detect when no known browser has a
// readable cookie store.
var ErrNoBrowserStore = errors.New("no supported browser cookie store found")

// Importer reads cookies from browser stores on fsys.
type Importer struct {
	fs    afero.Fs
	log   logger.Logger
	specs func() []browserSpec
}

// NewImporter returns an Importer. l may be nil.
func NewImporter(fsys afero.Fs, l logger.Logger) *Importer {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Importer{fs: fsys, log: l, specs: browserSpecs}
}

// Import reads the cookies for domain from the store at path.
func (im *Importer) Import(ctx context.Context, path, domain string) ([]Cookie, *Source, error) {
	return im.importWith(ctx, path, domain, safeStorage{})
}

func (im *Importer) importWith(ctx context.Context, path, domain string, ss safeStorage) ([]Cookie, *Source, error) {
	isSQLite, format, err := sniff(im.fs, path)
	if err != nil {
		return nil, nil, err
	}
	src := &Source{Path: path, Format: format}

	if !isSQLite {
		f, err := im.fs.Open(path)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		src.Browser = "Netscape"
		cookies, err := readNetscape(f, domain, im.log)
		if err != nil {
			return nil, nil, err
		}
		return cookies, src, nil
	}

	copyPath, cleanup, err := snapshot(im.fs, path)
	if err != nil {
		return nil, nil, err
	}
	defer cleanup()
	db, err := openSnapshot(copyPath)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	src.Format, err = sqliteFormat(ctx, db)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	var cookies []Cookie
	switch src.Format {
	case FormatFirefox:
		src.Browser = "Firefox"
		cookies, err = readFirefox(ctx, db, domain)
	case FormatChrome:
		src.Browser = "Chrome"
		var skipped int
		cookies, skipped, err = readChrome(ctx, db, domain, newChromeDecryptor(ss.Service, ss.Account))
		if skipped > 0 {
			im.log.Warning("skipped %d encrypted cookies for %s", skipped, domain)
		}
	}
	if err != nil {
		return nil, nil, err
	}
	return cookies, src, nil
}

// Detect scans the known browsers in priority order and imports from the
// first store that can be read.
func (im *Importer) Detect(ctx context.Context, domain string) ([]Cookie, *Source, error) {
	for _, spec := range im.specs() {
		for _, path := range im.candidates(spec) {
			if ok, _ := afero.Exists(im.fs, path); !ok {
				continue
			}
			cookies, src, err := im.importWith(ctx, path, domain, spec.SafeStorage)
			if err != nil {
				im.log.Warning("%s cookie store unreadable: %s", spec.Name, err.Error())
				continue
			}
			src.Browser = spec.Name
			return cookies, src, nil
		}
	}
	return nil, nil, ErrNoBrowserStore
}

func (im *Importer) candidates(spec browserSpec) []string {
	if len(spec.ProfilesIniPaths) == 0 {
		return spec.CookiePaths
	}
	var paths []string
	for _, ini := range spec.ProfilesIniPaths {
		if dir := defaultProfile(im.fs, ini); dir != "" {
			paths = append(paths, filepath.Join(dir, "cookies.sqlite"))
		}
	}
	return paths
}

// Batch is a list of Set-Cookie strings sharing one target URL.
type Batch struct {
	URL     string
	Cookies []string
}

// Batches groups cookies by target URL and warns about cookies that
// cannot be rendered.
func (im *Importer) Batches(cookies []Cookie) []Batch {
	out, skipped := Batches(cookies)
	if skipped > 0 {
		im.log.Warning("skipped %d cookie(s) with an invalid name or value", skipped)
	}
	return out
}

// Batches groups cookies by target URL in first-seen order. Cookies that
// cannot be rendered are dropped and counted.
func Batches(cookies []Cookie) (out []Batch, skipped int) {
	index := map[string]int{}
	for _, c := range cookies {
		sc := c.SetCookie()
		if sc == "" {
			skipped++
			continue
		}
		u := c.URL()
		i, ok := index[u]
		if !ok {
			i = len(out)
			index[u] = i
			out = append(out, Batch{URL: u})
		}
		out[i].Cookies = append(out[i].Cookies, sc)
	}
	return out, skipped
}
