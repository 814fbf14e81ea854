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

	"github.com/rs/zerolog"
	"github.com/walteh/transmute/pkg/txcontext"
)

// runUpgradePath drives every step of an UpgradePath in slice order, chaining
// each step's context off the previous one's and accumulating every context
// produced. There is no skipping: every step runs unless a prior step
// aborted, in which case the accumulated contexts so far (including the
// aborting step's) are returned alongside the error.
func runUpgradePath(ctx context.Context, path *UpgradePath, workingDir string) ([]*txcontext.Context, error) {
	logger := zerolog.Ctx(ctx)

	var contexts []*txcontext.Context
	var predecessor *txcontext.Context

	for _, step := range path.Steps {
		logger.Info().Str("step", step.Name).Msg("upgrade step starting")
		tctx, err := runTemplate(ctx, &step.Template, workingDir, predecessor)
		contexts = append(contexts, tctx)
		if err != nil {
			return contexts, err
		}
		predecessor = tctx
	}

	return contexts, nil
}
