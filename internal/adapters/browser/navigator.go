// Package browser hands navigation targets to the system web browser.
package browser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"runtime"

	"github.com/target/rightname-go/internal/ports"
)

// OpenFunc launches target in an external program.
type OpenFunc func(ctx context.Context, target string) error

// Config configures a Navigator.
type Config struct {
	// BaseURL resolves relative targets such as /dashboard. Optional.
	BaseURL string
	// Out receives the target when it cannot be opened. Defaults to os.Stderr.
	Out io.Writer
	// Open overrides the platform launcher, mainly for tests.
	Open   OpenFunc
	Logger *slog.Logger
}

// Navigator implements ports.Navigator by opening URLs in the system browser. Targets
// that cannot be opened are printed so the user can follow them manually.
type Navigator struct {
	base   *url.URL
	out    io.Writer
	open   OpenFunc
	logger *slog.Logger
}

var _ ports.Navigator = (*Navigator)(nil)

// New builds a Navigator.
func New(cfg Config) (*Navigator, error) {
	n := &Navigator{out: cfg.Out, open: cfg.Open, logger: cfg.Logger}
	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil || !base.IsAbs() {
			return nil, fmt.Errorf("invalid browser base url %q", cfg.BaseURL)
		}
		n.base = base
	}
	if n.out == nil {
		n.out = os.Stderr
	}
	if n.open == nil {
		n.open = systemOpen
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	return n, nil
}

// Navigate opens target. Launcher failures are reported to Out, not returned.
func (n *Navigator) Navigate(ctx context.Context, target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("parse navigation target: %w", err)
	}
	if !u.IsAbs() && n.base != nil {
		u = n.base.ResolveReference(u)
	}
	if !u.IsAbs() {
		_, err := fmt.Fprintf(n.out, "Continue at %s\n", u.String())
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %s URL", u.Scheme)
	}

	if err := n.open(ctx, u.String()); err != nil {
		n.logger.WarnContext(ctx, "open browser failed", "error", err)
		_, werr := fmt.Fprintf(n.out, "Open this URL in your browser:\n  %s\n", u.String())
		return werr
	}
	return nil
}

func systemOpen(ctx context.Context, target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", target)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", target)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
