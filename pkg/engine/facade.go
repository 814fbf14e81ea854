// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/walteh/transmute/pkg/txcontext"
)

// Stager populates Transformation.TransformedApplicationLocation with a
// staged working copy of Application.Folder before any utility runs. It is
// declared here, not in pkg/stage, so that pkg/stage can depend on pkg/engine
// for the types it stages without pkg/engine ever importing pkg/stage.
type Stager interface {
	Stage(ctx context.Context, tx *Transformation) error
}

// Listener is notified once, after a transformation's terminal outcome, with
// a read-only view of every context produced along the way (in execution
// order). It must not mutate anything reachable from contexts. Declared here
// for the same import-direction reason as Stager.
type Listener interface {
	PostTransformation(tx *Transformation, contexts []txcontext.ReadOnlyView)
	PostTransformationAbort(tx *Transformation, contexts []txcontext.ReadOnlyView)
}

// Perform stages tx (if stager is non-nil), drives its Template or
// UpgradePath to completion, notifies listeners, and returns the aggregated
// result. On abort the returned error is, or wraps, a *TransformationException
// (check with errors.As); on a staging failure it is, or wraps, a
// *StagingError and no listener is notified. The staged working directory is
// left on disk in both the success and abort cases for inspection.
func Perform(ctx context.Context, tx *Transformation, stager Stager, listeners []Listener) (*TransformationResult, error) {
	if stager != nil {
		if err := stager.Stage(ctx, tx); err != nil {
			return nil, err
		}
	}

	contexts, runErr := runTransformation(ctx, tx)

	views := make([]txcontext.ReadOnlyView, len(contexts))
	for i, c := range contexts {
		views[i] = c.ReadOnly()
	}

	res := &TransformationResult{WorkingDirectory: tx.TransformedApplicationLocation}
	for _, c := range contexts {
		res.ManualInstructions = append(res.ManualInstructions, c.Instructions()...)
	}

	if runErr != nil {
		res.Aborted = true
		var te *TransformationException
		if errors.As(runErr, &te) {
			res.AbortMessage = te.Message
			res.AbortingUtilityName = te.UtilityName
		}
		notifyAbort(ctx, listeners, tx, views)
		return res, runErr
	}

	notifySuccess(ctx, listeners, tx, views)
	return res, nil
}

func runTransformation(ctx context.Context, tx *Transformation) ([]*txcontext.Context, error) {
	if tx.IsUpgradePath() {
		return runUpgradePath(ctx, tx.UpgradePath, tx.TransformedApplicationLocation)
	}
	tctx, err := runTemplate(ctx, tx.Template, tx.TransformedApplicationLocation, nil)
	return []*txcontext.Context{tctx}, err
}

// notifySuccess and notifyAbort fan out to every listener, isolating a
// panicking listener from the rest (best-effort fan-out): the outcome
// returned to Perform's caller is unaffected by listener failures.
func notifySuccess(ctx context.Context, listeners []Listener, tx *Transformation, views []txcontext.ReadOnlyView) {
	for _, l := range listeners {
		notifyOne(ctx, func() { l.PostTransformation(tx, views) })
	}
}

func notifyAbort(ctx context.Context, listeners []Listener, tx *Transformation, views []txcontext.ReadOnlyView) {
	for _, l := range listeners {
		notifyOne(ctx, func() { l.PostTransformationAbort(tx, views) })
	}
}

func notifyOne(ctx context.Context, call func()) {
	defer func() {
		if r := recover(); r != nil {
			zerolog.Ctx(ctx).Error().Interface("panic", r).Msg("listener panicked")
		}
	}()
	call()
}
