package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	domainauth "github.com/target/rightname-go/internal/domain/auth"
	"github.com/target/rightname-go/internal/ports"
)

// terminalPrompt tells the user how to sign in when an action needs a session. The
// action itself is already remembered durably; any later login resumes it.
type terminalPrompt struct {
	out    io.Writer
	styles styles

	mu   sync.Mutex
	open bool
}

var _ ports.AuthPrompt = (*terminalPrompt)(nil)

func newTerminalPrompt(out io.Writer, st styles) *terminalPrompt {
	return &terminalPrompt{out: out, styles: st}
}

func (p *terminalPrompt) Open(_ context.Context, reason domainauth.PendingAction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true

	fmt.Fprintln(p.out, p.styles.warning.Render("Sign in required "+describeAction(reason)+"."))
	fmt.Fprintln(p.out, p.styles.muted.Render("Run `rightname login` or `rightname login --email <address>`; it continues automatically afterwards."))
	fmt.Fprintln(p.out, p.styles.muted.Render("Run `rightname cancel` to drop it."))
}

func (p *terminalPrompt) Close(_ context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
}

func (p *terminalPrompt) isOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

func describeAction(a domainauth.PendingAction) string {
	switch a.Kind {
	case domainauth.ActionViewReport:
		return "to view report " + a.ReportID
	default:
		return "to continue"
	}
}
