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

package builtinutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/walteh/transmute/pkg/recipe"
	"github.com/walteh/transmute/pkg/result"
	"github.com/walteh/transmute/pkg/txcontext"
	"github.com/walteh/transmute/pkg/utility"
	"gitlab.com/tozd/go/errors"
)

// ContainsCondition is a plain per-file utility, the sub-condition shape
// GlobFilter and GlobMultiCondition expect: it returns whether File's
// content contains Substr. An absent file is treated as not containing it
// rather than an error, since a filter/fold over a just-produced file set
// should not fail merely because a file vanished between listing and check.
type ContainsCondition struct {
	utility.Base
	File   string
	Substr string
}

// NewContainsCondition constructs a ContainsCondition.
func NewContainsCondition(name, file, substr string) *ContainsCondition {
	return &ContainsCondition{
		Base:   utility.Base{NameVal: name},
		File:   file,
		Substr: substr,
	}
}

func (c *ContainsCondition) Execute(ctx context.Context, workingDir string, tctx *txcontext.Context) result.ExecutionResult {
	data, err := os.ReadFile(filepath.Join(workingDir, c.File))
	if os.IsNotExist(err) {
		return result.UtilExecution(result.Val(result.BoolValue(false)))
	}
	if err != nil {
		return result.UtilExecution(result.UtilErr("reading file", errors.Errorf("reading %q: %w", c.File, err)))
	}
	return result.UtilExecution(result.Val(result.BoolValue(strings.Contains(string(data), c.Substr))))
}

func init() {
	recipe.Register("contains-condition", func(name string, args map[string]any) (utility.TransformationUtility, error) {
		file, _ := args["file"].(string)
		substr, _ := args["contains"].(string)
		return NewContainsCondition(name, file, substr), nil
	})
}
