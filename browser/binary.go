package browser

import (
	"os"
	"path/filepath"

	"github.com/go-rod/rod/lib/launcher"
)

// wellKnownPaths are system install locations probed when no explicit
// override is configured. Order matters: preferred binaries first.
var wellKnownPaths = []string{
	"/usr/bin/google-chrome-stable",
	"/usr/bin/google-chrome",
	"/usr/bin/chromium-browser",
	"/usr/bin/chromium",
	"/snap/bin/chromium",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
}

// serverlessFallback is the packaged binary location used in serverless
// deployments where no system browser exists.
const serverlessFallback = "/opt/chromium/chrome"

// ResolveBinary walks the executable fallback chain:
//
//  1. explicit override (config / COTIZADOR_BROWSER_BIN)
//  2. browser managed by the rod launcher (downloaded or already cached)
//  3. well-known system install paths
//  4. packaged serverless fallback
//
// Returns ok=false when nothing resolves; the caller decides how to fail.
func ResolveBinary(override string) (string, bool) {
	if override != "" {
		if p, ok := executable(override); ok {
			return p, true
		}
	}

	if p, ok := launcher.LookPath(); ok {
		return p, true
	}

	for _, candidate := range wellKnownPaths {
		if p, ok := executable(candidate); ok {
			return p, true
		}
	}

	if p, ok := executable(serverlessFallback); ok {
		return p, true
	}

	return "", false
}

// executable resolves symlinks and verifies the path is a regular file
// with the execute bit set.
func executable(path string) (string, bool) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false
	}
	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() {
		return "", false
	}
	if info.Mode().Perm()&0o111 == 0 {
		return "", false
	}
	return resolved, true
}
