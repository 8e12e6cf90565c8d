package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// OpenBrowser launches the system browser at the given URL, used to send the
// queue owner to the Spotify consent page during `juke auth`.
//
// Supports macOS, Linux, and Windows; the caller falls back to printing the
// URL when the platform is unknown or the launch fails.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch goos := getRuntime(); goos {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", goos)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
