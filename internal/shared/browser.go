package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// BrowserEnv names a command that replaces the platform opener, e.g. BROWSER=firefox.
const BrowserEnv = "BROWSER"

var getRuntime = func() string { return runtime.GOOS }

// browserCommand returns the command that opens url on the current platform.
func browserCommand(url string) (*exec.Cmd, error) {
	if b := os.Getenv(BrowserEnv); b != "" {
		return exec.Command(b, url), nil
	}

	switch rt := getRuntime(); rt {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return nil, fmt.Errorf("%w: cannot open a browser on %s", ErrNotImplemented, rt)
	}
}

// OpenBrowser opens url (an authorization page or a song preview) in the user's browser without waiting for it.
func OpenBrowser(url string) error {
	if url == "" {
		return fmt.Errorf("%w: url is empty", ErrMissingArgument)
	}

	cmd, err := browserCommand(url)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return cmd.Process.Release()
}
