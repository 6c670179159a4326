// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package blueprint defines the optional blueprint-host collaborator
// (spec §6): show-style-specific pre/post-take hooks that observe a take
// but can never fail it. A hook error is logged and swallowed by the
// caller, never propagated as a take failure.
package blueprint

import (
	"context"

	"github.com/sofie-broadcast/playout-core/internal/log"
	"github.com/sofie-broadcast/playout-core/internal/playout/model"
)

// Hooks is the blueprint host contract. Callers go through the Invoke*
// helpers below rather than calling methods directly: a nil Hooks value is
// a no-op there, and a hook error is logged instead of returned.
type Hooks interface {
	PreTake(ctx context.Context, current, taken model.PartInstance) error
	PostTake(ctx context.Context, current, taken model.PartInstance) error
	EndStateForPart(ctx context.Context, pi model.PartInstance) error
}

// Noop implements Hooks with every hook a no-op. It is the default when a
// show style has no blueprint package wired up.
type Noop struct{}

func (Noop) PreTake(context.Context, model.PartInstance, model.PartInstance) error  { return nil }
func (Noop) PostTake(context.Context, model.PartInstance, model.PartInstance) error { return nil }
func (Noop) EndStateForPart(context.Context, model.PartInstance) error              { return nil }

// InvokePreTake runs hooks.PreTake, logging rather than propagating a
// failure, per spec §6 ("failures are logged and do not fail the take").
// A nil hooks is treated as Noop.
func InvokePreTake(ctx context.Context, hooks Hooks, current, taken model.PartInstance) {
	if hooks == nil {
		return
	}
	invoke("preTake", func() error { return hooks.PreTake(ctx, current, taken) })
}

// InvokePostTake runs hooks.PostTake under the same failure contract.
func InvokePostTake(ctx context.Context, hooks Hooks, current, taken model.PartInstance) {
	if hooks == nil {
		return
	}
	invoke("postTake", func() error { return hooks.PostTake(ctx, current, taken) })
}

// InvokeEndStateForPart runs hooks.EndStateForPart under the same failure
// contract.
func InvokeEndStateForPart(ctx context.Context, hooks Hooks, pi model.PartInstance) {
	if hooks == nil {
		return
	}
	invoke("endStateForPart", func() error { return hooks.EndStateForPart(ctx, pi) })
}

func invoke(hook string, fn func() error) {
	if err := fn(); err != nil {
		log.WithComponent("playout.blueprint").Warn().
			Str("hook", hook).
			Err(err).
			Msg("blueprint hook failed, continuing")
	}
}
