//go:build unix

package cookies

import (
	"os"
	"path/filepath"
	"runtime"
)

// browserSpecsForHome returns the browser specs in priority order:
// Firefox, LibreWolf, Chrome, Chromium, Edge, Brave.
func browserSpecsForHome(home string, darwin bool) []browserSpec {
	if darwin {
		support := filepath.Join(home, "Library", "Application Support")
		return []browserSpec{
			{Name: "Firefox", ProfilesIniPaths: []string{filepath.Join(support, "Firefox", "profiles.ini")}},
			{Name: "LibreWolf", ProfilesIniPaths: []string{filepath.Join(support, "librewolf", "profiles.ini")}},
			chromiumSpec("Chrome", "Chrome", filepath.Join(support, "Google", "Chrome", "Default")),
			chromiumSpec("Chromium", "Chromium", filepath.Join(support, "Chromium", "Default")),
			chromiumSpec("Edge", "Microsoft Edge", filepath.Join(support, "Microsoft Edge", "Default")),
			chromiumSpec("Brave", "Brave", filepath.Join(support, "BraveSoftware", "Brave-Browser", "Default")),
		}
	}
	config := filepath.Join(home, ".config")
	return []browserSpec{
		{Name: "Firefox", ProfilesIniPaths: []string{
			filepath.Join(home, ".mozilla", "firefox", "profiles.ini"),
			filepath.Join(home, "snap", "firefox", "common", ".mozilla", "firefox", "profiles.ini"),
		}},
		{Name: "LibreWolf", ProfilesIniPaths: []string{filepath.Join(home, ".librewolf", "profiles.ini")}},
		chromiumSpec("Chrome", "Chrome", filepath.Join(config, "google-chrome", "Default")),
		chromiumSpec("Chromium", "Chromium", filepath.Join(config, "chromium", "Default")),
		chromiumSpec("Edge", "Microsoft Edge", filepath.Join(config, "microsoft-edge", "Default")),
		chromiumSpec("Brave", "Brave", filepath.Join(config, "BraveSoftware", "Brave-Browser", "Default")),
	}
}

func browserSpecs() []browserSpec {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return browserSpecsForHome(home, runtime.GOOS == "darwin")
}
