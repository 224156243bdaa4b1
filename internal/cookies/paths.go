package cookies

import "path/filepath"

// browserSpec lists where one browser keeps its cookies. Firefox-family
// browsers are found through profiles.ini, Chromium-family ones through
// direct cookie paths.
type browserSpec struct {
	Name             string
	ProfilesIniPaths []string
	CookiePaths      []string
	// SafeStorage names the keyring entry holding the Chromium value key.
	SafeStorage safeStorage
}

type safeStorage struct {
	Service string
	Account string
}

// chromiumSpec returns the spec of a Chromium browser whose profile
// directory is profileDir.
func chromiumSpec(name, account, profileDir string) browserSpec {
	return browserSpec{
		Name: name,
		CookiePaths: []string{
			filepath.Join(profileDir, "Network", "Cookies"),
			filepath.Join(profileDir, "Cookies"),
		},
		SafeStorage: safeStorage{Service: account + " Safe Storage", Account: account},
	}
}
