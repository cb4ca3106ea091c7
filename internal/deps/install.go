package deps

import (
	"fmt"
	"sync"
)

// packageManagers maps a manager binary to its install command
// template, in detection preference order.
var packageManagerOrder = []string{
	"apt", "dnf", "yum", "pacman", "zypper", "emerge", "apk", "flatpak", "snap",
}

var packageManagers = map[string]string{
	"apt":     "sudo apt install %s",
	"dnf":     "sudo dnf install %s",
	"yum":     "sudo yum install %s",
	"pacman":  "sudo pacman -S %s",
	"zypper":  "sudo zypper install %s",
	"emerge":  "sudo emerge %s",
	"apk":     "sudo apk add %s",
	"flatpak": "flatpak install flathub %s",
	"snap":    "sudo snap install %s",
}

// packageNames maps a tool to the package that provides it, per
// package manager, with a "default" fallback.
var packageNames = map[string]map[string]string{
	"7z": {
		"dnf": "p7zip", "yum": "p7zip", "pacman": "p7zip",
		"zypper": "p7zip", "emerge": "app-arch/p7zip", "apk": "p7zip",
		"default": "p7zip-full",
	},
	"convert":       {"emerge": "media-gfx/imagemagick", "default": "imagemagick"},
	"libreoffice":   {"emerge": "app-office/libreoffice", "default": "libreoffice"},
	"ffmpeg":        {"emerge": "media-video/ffmpeg", "default": "ffmpeg"},
	"pandoc":        {"emerge": "app-text/pandoc", "default": "pandoc"},
	"yq":            {"default": "yq"},
	"zip":           {"default": "zip"},
	"unzip":         {"default": "unzip"},
	"genisoimage":   {"pacman": "cdrtools", "emerge": "app-cdr/cdrtools", "default": "genisoimage"},
	"xz":            {"emerge": "app-arch/xz-utils", "dnf": "xz", "yum": "xz", "pacman": "xz", "zypper": "xz", "apk": "xz", "default": "xz-utils"},
	"lzop":          {"emerge": "app-arch/lzop", "default": "lzop"},
	"ebook-convert": {"emerge": "app-text/calibre", "flatpak": "com.calibre_ebook.calibre", "default": "calibre"},
	"pdftotext":     {"pacman": "poppler", "zypper": "poppler-tools", "emerge": "media-libs/poppler", "default": "poppler-utils"},
	"pdftoppm":      {"pacman": "poppler", "zypper": "poppler-tools", "emerge": "media-libs/poppler", "default": "poppler-utils"},
}

// Manager detects the system package manager once and builds install
// hints for missing tools.
type Manager struct {
	once     sync.Once
	detected string
}

// NewManager returns a manager with deferred detection.
func NewManager() *Manager {
	return &Manager{}
}

// PackageManager returns the first supported package manager found on
// PATH, or "" when none is.
func (m *Manager) PackageManager() string {
	m.once.Do(func() {
		for _, pm := range packageManagerOrder {
			if _, err := lookPath(pm); err == nil {
				m.detected = pm
				return
			}
		}
	})
	return m.detected
}

// InstallHint returns the install command for a tool, or a manual
// install note when the tool or package manager is unknown.
func (m *Manager) InstallHint(tool string) string {
	mapping, ok := packageNames[tool]
	if !ok {
		return fmt.Sprintf("install %s manually", tool)
	}
	pm := m.PackageManager()
	if pm == "" {
		return fmt.Sprintf("install %s manually", tool)
	}
	pkg, ok := mapping[pm]
	if !ok {
		pkg = mapping["default"]
	}
	if pkg == "" {
		pkg = tool
	}
	return fmt.Sprintf(packageManagers[pm], pkg)
}
