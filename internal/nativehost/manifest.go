package nativehost

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"
)

// HostName is the native messaging host name extensions connect to.
const HostName = "com.cookiebridge.host"

type Browser string

const (
	BrowserChrome   Browser = "chrome"
	BrowserFirefox  Browser = "firefox"
	BrowserChromium Browser = "chromium"
	BrowserEdge     Browser = "edge"
	BrowserBrave    Browser = "brave"
)

func SupportedBrowsers() []Browser {
	return []Browser{BrowserChrome, BrowserFirefox, BrowserChromium, BrowserEdge, BrowserBrave}
}

// ParseBrowser returns the Browser named s.
func ParseBrowser(s string) (Browser, error) {
	for _, b := range SupportedBrowsers() {
		if string(b) == strings.ToLower(s) {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown browser: %s", s)
}

// IsChromeBased reports whether b uses Chrome's manifest format.
func (b Browser) IsChromeBased() bool {
	return b != BrowserFirefox
}

type ChromeManifest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Path           string   `json:"path"`
	Type           string   `json:"type"`
	AllowedOrigins []string `json:"allowed_origins"`
}

type FirefoxManifest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Path              string   `json:"path"`
	Type              string   `json:"type"`
	AllowedExtensions []string `json:"allowed_extensions"`
}

const manifestDescription = "cookiebridge cookie sync host"

func GenerateChromeManifest(hostPath, extensionID string) []byte {
	b, _ := json.MarshalIndent(ChromeManifest{
		Name:           HostName,
		Description:    manifestDescription,
		Path:           hostPath,
		Type:           "stdio",
		AllowedOrigins: []string{"chrome-extension://" + extensionID + "/"},
	}, "", "  ")
	return b
}

func GenerateFirefoxManifest(hostPath, extensionID string) []byte {
	b, _ := json.MarshalIndent(FirefoxManifest{
		Name:              HostName,
		Description:       manifestDescription,
		Path:              hostPath,
		Type:              "stdio",
		AllowedExtensions: []string{extensionID},
	}, "", "  ")
	return b
}

// ManifestPath returns where browser looks for the host manifest on
// platform, or "" when the pair is unsupported. On Windows the browser
// finds the file through a registry key pointing at this path.
func ManifestPath(browser Browser, platform, homeDir string) string {
	manifestFile := HostName + ".json"

	switch platform {
	case "darwin":
		appSupport := filepath.Join(homeDir, "Library", "Application Support")
		switch browser {
		case BrowserChrome:
			return filepath.Join(appSupport, "Google", "Chrome", "NativeMessagingHosts", manifestFile)
		case BrowserChromium:
			return filepath.Join(appSupport, "Chromium", "NativeMessagingHosts", manifestFile)
		case BrowserFirefox:
			return filepath.Join(appSupport, "Mozilla", "NativeMessagingHosts", manifestFile)
		case BrowserEdge:
			return filepath.Join(appSupport, "Microsoft Edge", "NativeMessagingHosts", manifestFile)
		case BrowserBrave:
			return filepath.Join(appSupport, "BraveSoftware", "Brave-Browser", "NativeMessagingHosts", manifestFile)
		}
	case "linux":
		switch browser {
		case BrowserChrome:
			return filepath.Join(homeDir, ".config", "google-chrome", "NativeMessagingHosts", manifestFile)
		case BrowserChromium:
			return filepath.Join(homeDir, ".config", "chromium", "NativeMessagingHosts", manifestFile)
		case BrowserFirefox:
			return filepath.Join(homeDir, ".mozilla", "native-messaging-hosts", manifestFile)
		case BrowserEdge:
			return filepath.Join(homeDir, ".config", "microsoft-edge", "NativeMessagingHosts", manifestFile)
		case BrowserBrave:
			return filepath.Join(homeDir, ".config", "BraveSoftware", "Brave-Browser", "NativeMessagingHosts", manifestFile)
		}
	case "windows":
		return filepath.Join(homeDir, "AppData", "Local", "cookiebridge", "NativeMessagingHosts", string(browser), manifestFile)
	}
	return ""
}

// ManifestInstaller writes and removes host manifests.
type ManifestInstaller struct {
	HostPath           string
	ChromeExtensionID  string
	FirefoxExtensionID string
	// BaseDir replaces the home directory when set.
	BaseDir string
	// Platform replaces runtime.GOOS when set.
	Platform string
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
}

func (m *ManifestInstaller) fs() afero.Fs {
	if m.Fs == nil {
		return afero.NewOsFs()
	}
	return m.Fs
}

func (m *ManifestInstaller) platform() string {
	if m.Platform != "" {
		return m.Platform
	}
	return runtime.GOOS
}

func (m *ManifestInstaller) homeDir() string {
	if m.BaseDir != "" {
		return m.BaseDir
	}
	home, _ := os.UserHomeDir()
	return home
}

// Path returns the manifest location for browser.
func (m *ManifestInstaller) Path(browser Browser) string {
	return ManifestPath(browser, m.platform(), m.homeDir())
}

// Install writes the manifest for browser and returns its path.
func (m *ManifestInstaller) Install(browser Browser) (string, error) {
	if m.HostPath == "" {
		return "", errors.New("host path is required")
	}
	var manifest []byte
	if browser.IsChromeBased() {
		if m.ChromeExtensionID == "" {
			return "", errors.New("chrome extension ID is required")
		}
		manifest = GenerateChromeManifest(m.HostPath, m.ChromeExtensionID)
	} else {
		if m.FirefoxExtensionID == "" {
			return "", errors.New("firefox extension ID is required")
		}
		manifest = GenerateFirefoxManifest(m.HostPath, m.FirefoxExtensionID)
	}

	path := m.Path(browser)
	if path == "" {
		return "", fmt.Errorf("unsupported browser/platform: %s/%s", browser, m.platform())
	}
	fs := m.fs()
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, manifest, 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}

// Uninstall removes the manifest for browser. A missing manifest is not
// an error.
func (m *ManifestInstaller) Uninstall(browser Browser) error {
	path := m.Path(browser)
	if path == "" {
		return nil
	}
	if err := m.fs().Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Installed reports whether a manifest for browser exists.
func (m *ManifestInstaller) Installed(browser Browser) bool {
	path := m.Path(browser)
	if path == "" {
		return false
	}
	ok, _ := afero.Exists(m.fs(), path)
	return ok
}

// LaunchedByBrowser reports whether args look like a browser starting
// the host: Chrome passes the caller's origin, Firefox passes the
// manifest path and the extension ID.
func LaunchedByBrowser(args []string) bool {
	if len(args) == 0 {
		return false
	}
	if strings.HasPrefix(args[0], "chrome-extension://") {
		return true
	}
	return filepath.Base(args[0]) == HostName+".json"
}
