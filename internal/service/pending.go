package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	domainauth "github.com/target/rightname-go/internal/domain/auth"
	apperrors "github.com/target/rightname-go/internal/errors"
	"github.com/target/rightname-go/internal/ports"
)

// PendingActions remembers, in durable state, the one auth-gated action the user was
// attempting when they were asked to log in.
type PendingActions struct {
	store  ports.DurableStore
	logger *slog.Logger
}

// NewPendingActions constructs the queue over store.
func NewPendingActions(store ports.DurableStore, logger *slog.Logger) *PendingActions {
	if logger == nil {
		logger = slog.Default()
	}
	return &PendingActions{store: store, logger: logger}
}

// Remember stores action, replacing any earlier one.
func (p *PendingActions) Remember(ctx context.Context, action domainauth.PendingAction) error {
	if !action.Valid() {
		return apperrors.ValidationField("kind", fmt.Sprintf("invalid pending action %q", action.Kind))
	}
	raw, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("encode pending action: %w", err)
	}
	if err := p.store.Set(ctx, ports.KeyPendingAction, raw); err != nil {
		return fmt.Errorf("save pending action: %w", err)
	}
	return nil
}

// ConsumeIfPresent returns and clears the pending action in one atomic step. Concurrent
// callers never both receive the same action.
func (p *PendingActions) ConsumeIfPresent(ctx context.Context) (domainauth.PendingAction, bool, error) {
	raw, err := p.store.Take(ctx, ports.KeyPendingAction)
	if errors.Is(err, ports.ErrNotFound) {
		return domainauth.PendingAction{}, false, nil
	}
	if err != nil {
		return domainauth.PendingAction{}, false, fmt.Errorf("take pending action: %w", err)
	}
	return p.decode(ctx, raw)
}

// Peek returns the pending action without clearing it.
func (p *PendingActions) Peek(ctx context.Context) (domainauth.PendingAction, bool, error) {
	raw, err := p.store.Get(ctx, ports.KeyPendingAction)
	if errors.Is(err, ports.ErrNotFound) {
		return domainauth.PendingAction{}, false, nil
	}
	if err != nil {
		return domainauth.PendingAction{}, false, fmt.Errorf("read pending action: %w", err)
	}
	return p.decode(ctx, raw)
}

// Cancel clears the pending action without running it.
func (p *PendingActions) Cancel(ctx context.Context) error {
	if err := p.store.Delete(ctx, ports.KeyPendingAction); err != nil {
		return fmt.Errorf("cancel pending action: %w", err)
	}
	return nil
}

// decode drops unreadable entries: a corrupt action is treated as absent.
func (p *PendingActions) decode(ctx context.Context, raw []byte) (domainauth.PendingAction, bool, error) {
	var action domainauth.PendingAction
	if err := json.Unmarshal(raw, &action); err != nil || !action.Valid() {
		p.logger.WarnContext(ctx, "ignoring unreadable pending action", "error", err)
		return domainauth.PendingAction{}, false, nil
	}
	return action, true, nil
}
