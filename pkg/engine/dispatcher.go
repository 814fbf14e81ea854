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
	"fmt"

	"github.com/rs/zerolog"
	"github.com/walteh/transmute/pkg/result"
	"github.com/walteh/transmute/pkg/txcontext"
	"github.com/walteh/transmute/pkg/utility"
)

// dispatch is the heart of the engine: it performs u, routes the resulting
// PerformResult by shape, recurses into children/loop-bodies/sub-conditions
// as needed, and unconditionally persists u's raw result at the end. order
// is a purely structural logging label; it is never parsed.
func dispatch(ctx context.Context, u utility.TransformationUtility, workingDir string, tctx *txcontext.Context, order string) error {
	logger := zerolog.Ctx(ctx)

	pr := perform(ctx, u, workingDir, tctx)

	defer func() {
		if u.SaveResult() {
			tctx.SetResult(u.Name(), pr)
		}
	}()

	switch pr.Kind {
	case result.PerformSkippedCondition, result.PerformSkippedDependency:
		if u.IsOperation() {
			logger.Info().Str("order", order).Str("utility", u.Name()).Str("reason", pr.Details).Msg("skipped operation")
		} else {
			logger.Debug().Str("order", order).Str("utility", u.Name()).Str("reason", pr.Details).Msg("skipped")
		}
		return nil

	case result.PerformError:
		return handleError(ctx, tctx, u, pr.Err, order)

	case result.PerformExecutionResult:
		return dispatchExecutionResult(ctx, u, workingDir, tctx, order, pr.Exec)

	default:
		logger.Error().Str("order", order).Str("utility", u.Name()).Msg("unknown perform result kind")
		return nil
	}
}

func dispatchExecutionResult(ctx context.Context, u utility.TransformationUtility, workingDir string, tctx *txcontext.Context, order string, exec result.ExecutionResult) error {
	logger := zerolog.Ctx(ctx)

	if exec.Kind == result.ExecutionKindOp {
		return processOperationExecutionResult(ctx, u, tctx, order, exec.Op)
	}

	u2 := exec.Util
	if u2.Tag == result.UtilError {
		return processUtilityExecutionResult(ctx, u, tctx, order, u2)
	}

	if mc, ok := u.(utility.MultipleConditions); ok {
		folded, err := foldMultipleConditions(ctx, mc, workingDir, tctx, order, u2)
		if err != nil {
			return handleError(ctx, tctx, u, err, order)
		}
		u2 = folded
	} else if ff, ok := u.(utility.FilterFiles); ok {
		folded, err := foldFilterFiles(ctx, ff, workingDir, tctx, order, u2)
		if err != nil {
			return handleError(ctx, tctx, u, err, order)
		}
		u2 = folded
	}

	if err := processUtilityExecutionResult(ctx, u, tctx, order, u2); err != nil {
		return err
	}

	if loop, ok := u.(utility.Loop); ok {
		if b, isBool := u2.Value.AsBool(); isBool && b {
			iter := loop.NextIteration()
			newOrder := fmt.Sprintf("%s.%d", order, iter)
			if err := dispatch(ctx, loop.Run(), workingDir, tctx, newOrder+".1"); err != nil {
				return err
			}
			return dispatch(ctx, loop.Iterate(), workingDir, tctx, order)
		}
		return nil
	}

	if parent, ok := u.(utility.Parent); ok {
		if u2.Tag != result.UtilValue {
			return nil
		}
		return dispatchChildren(ctx, parent.Children(), workingDir, tctx, order)
	}

	if rec, ok := utility.IsManualInstruction(result.UtilExecution(u2)); ok {
		tctx.AppendInstruction(rec)
	}

	return nil
}

// dispatchChildren dispatches a parent's children in order under order,
// advancing the local counter only after an operation-or-parent child, the
// same rule the template driver applies at the top level.
func dispatchChildren(ctx context.Context, children []utility.TransformationUtility, workingDir string, tctx *txcontext.Context, order string) error {
	i := 1
	for _, child := range children {
		childOrder := fmt.Sprintf("%s.%d", order, i)
		if err := dispatch(ctx, child, workingDir, tctx, childOrder); err != nil {
			return err
		}
		if child.IsOperation() {
			i++
			continue
		}
		if _, isParent := child.(utility.Parent); isParent {
			i++
		}
	}
	return nil
}

func processOperationExecutionResult(ctx context.Context, u utility.TransformationUtility, tctx *txcontext.Context, order string, op result.OpResult) error {
	logger := zerolog.Ctx(ctx)
	switch op.Tag {
	case result.OpSuccess:
		logger.Info().Str("order", order).Str("utility", u.Name()).Msg(op.Details)
	case result.OpNoOp:
		logger.Debug().Str("order", order).Str("utility", u.Name()).Msg(op.Details)
	case result.OpWarning:
		ev := logger.Warn().Str("order", order).Str("utility", u.Name())
		if len(op.Warnings) > 0 {
			ev = ev.Strs("warnings", op.Warnings)
		}
		ev.Msg(op.Details)
	case result.OpError:
		return handleError(ctx, tctx, u, op.Err, order)
	default:
		logger.Error().Str("order", order).Str("utility", u.Name()).Msg("unknown operation result tag")
	}
	return nil
}

func processUtilityExecutionResult(ctx context.Context, u utility.TransformationUtility, tctx *txcontext.Context, order string, ur result.UtilResult) error {
	logger := zerolog.Ctx(ctx)

	if u.SaveResult() {
		tctx.Set(u.ContextAttributeName(), ur.Value)
	}

	switch ur.Tag {
	case result.UtilNull:
		logger.Warn().Str("order", order).Str("utility", u.Name()).Msg("utility returned null")
	case result.UtilValue:
		logger.Debug().Str("order", order).Str("utility", u.Name()).Str("value", result.Truncate(fmt.Sprintf("%+v", ur.Value), 120)).Msg("computed value")
	case result.UtilWarning:
		ev := logger.Warn().Str("order", order).Str("utility", u.Name())
		if len(ur.Warnings) > 0 {
			ev = ev.Strs("warnings", ur.Warnings)
		}
		ev.Msg(ur.Details)
	case result.UtilError:
		return handleError(ctx, tctx, u, ur.Err, order)
	default:
		logger.Error().Str("order", order).Str("utility", u.Name()).Msg("unknown utility result tag")
	}
	return nil
}

// handleError implements §4.6: abort-worthy utilities unwind the template
// via a *TransformationException; otherwise the failure is logged at error
// level, recorded (by the caller's deferred SaveResult), and dispatch
// continues normally.
func handleError(ctx context.Context, tctx *txcontext.Context, u utility.TransformationUtility, cause error, order string) error {
	logger := zerolog.Ctx(ctx)
	if !u.AbortOnFailure() {
		logger.Error().Err(cause).Str("order", order).Str("utility", u.Name()).Msg("utility failed")
		return nil
	}
	message := u.AbortionMessage()
	if message == "" {
		message = utility.DefaultAbortionMessage(u.Name())
	}
	logger.Error().Err(cause).Str("order", order).Str("utility", u.Name()).Str("description", u.Description()).Msg(message)
	tctx.Abort(cause, message, u.Name())
	return newAbortException(message, u.Name(), cause, tctx)
}

// foldMultipleConditions evaluates a fresh per-file sub-condition for every
// file in u's value, folding the booleans per Mode with short-circuiting.
func foldMultipleConditions(ctx context.Context, u utility.MultipleConditions, workingDir string, tctx *txcontext.Context, order string, ur result.UtilResult) (result.UtilResult, error) {
	files, ok := ur.Value.AsFileSet()
	if !ok {
		return result.UtilResult{}, wrapf("utility %q: MultipleConditions value is not a file set", u.Name())
	}

	acc := u.Mode() == utility.ModeAll
	for i, f := range files {
		sub := u.NewSubCondition(f)
		subOrder := fmt.Sprintf("%s.cond.%d", order, i+1)
		b, err := evalSubCondition(ctx, sub, workingDir, tctx, subOrder, u.Name(), f)
		if err != nil {
			return result.UtilResult{}, err
		}
		if u.Mode() == utility.ModeAll {
			acc = acc && b
			if !acc {
				break
			}
		} else {
			acc = acc || b
			if acc {
				break
			}
		}
	}
	return result.Val(result.BoolValue(acc)), nil
}

// foldFilterFiles evaluates a fresh per-file sub-condition for every file in
// u's value, retaining the files for which it holds true.
func foldFilterFiles(ctx context.Context, u utility.FilterFiles, workingDir string, tctx *txcontext.Context, order string, ur result.UtilResult) (result.UtilResult, error) {
	files, ok := ur.Value.AsFileSet()
	if !ok {
		return result.UtilResult{}, wrapf("utility %q: FilterFiles value is not a file set", u.Name())
	}

	kept := make([]string, 0, len(files))
	for i, f := range files {
		sub := u.NewSubCondition(f)
		subOrder := fmt.Sprintf("%s.cond.%d", order, i+1)
		b, err := evalSubCondition(ctx, sub, workingDir, tctx, subOrder, u.Name(), f)
		if err != nil {
			return result.UtilResult{}, err
		}
		if b {
			kept = append(kept, f)
		}
	}
	return result.Val(result.FileSetValue(kept)), nil
}

// evalSubCondition performs a fresh per-file sub-condition utility and
// extracts its Boolean value. A sub-condition that does not resolve to a
// VALUE/WARNING Boolean result is an error naming the enclosing utility, the
// sub-condition, and the file, per the fold's error-propagation rule.
func evalSubCondition(ctx context.Context, sub utility.TransformationUtility, workingDir string, tctx *txcontext.Context, order, enclosingName, file string) (bool, error) {
	pr := perform(ctx, sub, workingDir, tctx)
	if pr.Kind != result.PerformExecutionResult || pr.Exec.Kind != result.ExecutionKindUtil {
		return false, wrapf("enclosing utility %q: sub-condition %q on file %q did not return a value", enclosingName, sub.Name(), file)
	}
	ur := pr.Exec.Util
	if ur.Tag != result.UtilValue && ur.Tag != result.UtilWarning {
		return false, wrapf("enclosing utility %q: sub-condition %q on file %q returned %s", enclosingName, sub.Name(), file, ur.Tag)
	}
	b, isBool := ur.Value.AsBool()
	if !isBool {
		return false, wrapf("enclosing utility %q: sub-condition %q on file %q did not return a boolean", enclosingName, sub.Name(), file)
	}
	return b, nil
}
