package cookies

import (
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/spf13/afero"
)

// defaultProfile returns the default profile directory named by a
// Firefox-style profiles.ini, or "" when none can be found. The install
// default of modern Firefox wins over a profile marked Default=1, which
// wins over the first listed profile.
func defaultProfile(fsys afero.Fs, iniPath string) string {
	data, err := afero.ReadFile(fsys, iniPath)
	if err != nil {
		return ""
	}
	cfg, err := ini.Load(data)
	if err != nil {
		return ""
	}
	root := filepath.Dir(iniPath)
	resolve := func(p string, relative bool) string {
		p = filepath.FromSlash(p)
		if !relative && filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}

	for _, sec := range cfg.Sections() {
		if !strings.HasPrefix(sec.Name(), "Install") {
			continue
		}
		if d := sec.Key("Default").String(); d != "" {
			return resolve(d, false)
		}
	}

	var first string
	for _, sec := range cfg.Sections() {
		if !strings.HasPrefix(sec.Name(), "Profile") {
			continue
		}
		p := sec.Key("Path").String()
		if p == "" {
			continue
		}
		dir := resolve(p, sec.Key("IsRelative").String() != "0")
		if sec.Key("Default").String() == "1" {
			return dir
		}
		if first == "" {
			first = dir
		}
	}
	return first
}
