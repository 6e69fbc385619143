// Package xbrowser opens the live preview in the user's browser.
package xbrowser

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/pkg/browser"

	"oss.terrastruct.com/xos"
)

// OpenURL opens url with $BROWSER when set, falling back to the platform default.
// $BROWSER=0 disables opening anything.
func OpenURL(ctx context.Context, env *xos.Env, url string) error {
	browserEnv := env.Getenv("BROWSER")
	switch browserEnv {
	case "":
		return browser.OpenURL(url)
	case "0", "false":
		return nil
	}
	browserSh := fmt.Sprintf("%s '$1'", browserEnv)
	cmd := exec.CommandContext(ctx, "sh", "-c", browserSh, "--", url)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to run %v (out: %q): %w", cmd.Args, out, err)
	}
	return nil
}
