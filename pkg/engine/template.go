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
	"strconv"

	"github.com/walteh/transmute/pkg/txcontext"
	"github.com/walteh/transmute/pkg/utility"
)

// runTemplate drives one Template to completion: it allocates a context
// chained to predecessor, dispatches each top-level utility with an
// incrementing decimal order stamp, and returns the populated context. The
// operationsExecutionOrder counter only advances after a top-level utility
// that is an operation or a parent, matching the counter rule applied one
// level down inside dispatchChildren.
func runTemplate(ctx context.Context, tmpl *Template, workingDir string, predecessor *txcontext.Context) (*txcontext.Context, error) {
	tctx := txcontext.New(tmpl.Name, predecessor)

	order := 1
	for _, u := range tmpl.Utilities {
		if err := dispatch(ctx, u, workingDir, tctx, strconv.Itoa(order)); err != nil {
			var te *TransformationException
			if errors.As(err, &te) {
				return tctx, te
			}
			return tctx, newInternalException("template driver dispatch failed", err, tctx)
		}
		if u.IsOperation() {
			order++
			continue
		}
		if _, isParent := u.(utility.Parent); isParent {
			order++
		}
	}

	return tctx, nil
}
