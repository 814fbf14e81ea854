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

	"github.com/walteh/transmute/pkg/result"
	"github.com/walteh/transmute/pkg/txcontext"
	"github.com/walteh/transmute/pkg/utility"
)

// perform checks u's preconditions (executeIf, then dependencies) and, if
// both hold, invokes Execute under panic recovery. It never touches the
// context's instruction log, abort state, or logging — that is the
// dispatcher's job one layer up. This mirrors the "u.perform(workingDir,
// context)" step named in the dispatch protocol.
func perform(ctx context.Context, u utility.TransformationUtility, workingDir string, tctx *txcontext.Context) result.PerformResult {
	if cond := u.ExecuteIf(); cond != "" {
		v, ok := tctx.Get(cond)
		if !ok {
			return result.SkippedCondition(fmt.Sprintf("executeIf %q is unset", cond))
		}
		b, isBool := v.AsBool()
		if !isBool || !b {
			return result.SkippedCondition(fmt.Sprintf("executeIf %q is false", cond))
		}
	}

	for _, dep := range u.Dependencies() {
		depResult, ok := tctx.GetResult(dep)
		if !ok || depResult.DependencyFailure() {
			return result.SkippedDependency(fmt.Sprintf("dependency %q did not succeed", dep))
		}
	}

	return safeExecute(ctx, u, workingDir, tctx)
}

// safeExecute recovers a panicking Execute into a PerformError, the Go
// analogue of catching a thrown TransformationUtilityException around the
// execute call.
func safeExecute(ctx context.Context, u utility.TransformationUtility, workingDir string, tctx *txcontext.Context) (pr result.PerformResult) {
	defer func() {
		if r := recover(); r != nil {
			pr = result.ErrorPerform(
				fmt.Sprintf("%s panicked during execute", u.Name()),
				wrapf("utility %q panicked: %v", u.Name(), r),
			)
		}
	}()
	return result.ExecutionPerform(u.Execute(ctx, workingDir, tctx))
}
