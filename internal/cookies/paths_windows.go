//go:build windows

package cookies

import (
	"os"
	"path/filepath"
)

// browserSpecsForEnv returns the browser specs for the given LOCALAPPDATA
// and APPDATA directories.
func browserSpecsForEnv(localAppData, appData string) []browserSpec {
	return []browserSpec{
		{Name: "Firefox", ProfilesIniPaths: []string{filepath.Join(appData, "Mozilla", "Firefox", "profiles.ini")}},
		{Name: "LibreWolf", ProfilesIniPaths: []string{filepath.Join(appData, "LibreWolf", "profiles.ini")}},
		chromiumSpec("Chrome", "Chrome", filepath.Join(localAppData, "Google", "Chrome", "User Data", "Default")),
		chromiumSpec("Chromium", "Chromium", filepath.Join(localAppData, "Chromium", "User Data", "Default")),
		chromiumSpec("Edge", "Microsoft Edge", filepath.Join(localAppData, "Microsoft", "Edge", "User Data", "Default")),
		chromiumSpec("Brave", "Brave", filepath.Join(localAppData, "BraveSoftware", "Brave-Browser", "User Data", "Default")),
	}
}

func browserSpecs() []browserSpec {
	return browserSpecsForEnv(os.Getenv("LOCALAPPDATA"), os.Getenv("APPDATA"))
}
