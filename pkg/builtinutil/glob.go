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

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/transmute/pkg/recipe"
	"github.com/walteh/transmute/pkg/result"
	"github.com/walteh/transmute/pkg/txcontext"
	"github.com/walteh/transmute/pkg/utility"
	"gitlab.com/tozd/go/errors"
)

// listWorkingDirFiles produces the working directory's file set (relative
// paths, slash-separated) optionally scoped to a root-relative doublestar
// glob. Shared by GlobFilter and GlobMultiCondition, grounded on the
// teacher's copyOperation.shouldIgnore use of doublestar.Match, generalized
// from an ignore-predicate to a file-set producer.
func listWorkingDirFiles(workingDir, pattern string) ([]string, error) {
	fsys := os.DirFS(workingDir)
	if pattern == "" {
		pattern = "**"
	}
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, errors.Errorf("glob %q: %w", pattern, err)
	}

	var files []string
	for _, m := range matches {
		info, err := os.Stat(workingDir + string(os.PathSeparator) + m)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			files = append(files, m)
		}
	}
	return files, nil
}

// GlobFilter is a FilterFiles utility: it produces the working directory's
// file set (optionally scoped to Pattern) and keeps the files whose content
// contains Contains.
type GlobFilter struct {
	utility.Base
	Pattern  string
	Contains string
}

// NewGlobFilter constructs a GlobFilter. pattern may be empty to match every
// file under the working directory.
func NewGlobFilter(name, contextAttr, pattern, contains string) *GlobFilter {
	return &GlobFilter{
		Base:     utility.Base{NameVal: name, ContextAttributeVal: contextAttr, DefaultSaveResult: true},
		Pattern:  pattern,
		Contains: contains,
	}
}

func (g *GlobFilter) Execute(ctx context.Context, workingDir string, tctx *txcontext.Context) result.ExecutionResult {
	files, err := listWorkingDirFiles(workingDir, g.Pattern)
	if err != nil {
		return result.UtilExecution(result.UtilErr("listing files", err))
	}
	return result.UtilExecution(result.Val(result.FileSetValue(files)))
}

func (g *GlobFilter) NewSubCondition(file string) utility.TransformationUtility {
	return NewContainsCondition(g.Name()+"/cond/"+file, file, g.Contains)
}

// GlobMultiCondition shares GlobFilter's file-set production but folds its
// per-file sub-conditions with an ALL/ANY mode instead of filtering.
type GlobMultiCondition struct {
	utility.Base
	Pattern  string
	Contains string
	Kind     utility.ConditionMode
}

// NewGlobMultiCondition constructs a GlobMultiCondition.
func NewGlobMultiCondition(name, contextAttr, pattern, contains string, mode utility.ConditionMode) *GlobMultiCondition {
	return &GlobMultiCondition{
		Base:     utility.Base{NameVal: name, ContextAttributeVal: contextAttr, DefaultSaveResult: true},
		Pattern:  pattern,
		Contains: contains,
		Kind:     mode,
	}
}

func (g *GlobMultiCondition) Mode() utility.ConditionMode { return g.Kind }

func (g *GlobMultiCondition) Execute(ctx context.Context, workingDir string, tctx *txcontext.Context) result.ExecutionResult {
	files, err := listWorkingDirFiles(workingDir, g.Pattern)
	if err != nil {
		return result.UtilExecution(result.UtilErr("listing files", err))
	}
	return result.UtilExecution(result.Val(result.FileSetValue(files)))
}

func (g *GlobMultiCondition) NewSubCondition(file string) utility.TransformationUtility {
	return NewContainsCondition(g.Name()+"/cond/"+file, file, g.Contains)
}

func init() {
	recipe.Register("glob-filter", func(name string, args map[string]any) (utility.TransformationUtility, error) {
		pattern, _ := args["pattern"].(string)
		contains, _ := args["contains"].(string)
		attr, _ := args["context_attribute"].(string)
		return NewGlobFilter(name, attr, pattern, contains), nil
	})

	recipe.Register("glob-multi-condition", func(name string, args map[string]any) (utility.TransformationUtility, error) {
		pattern, _ := args["pattern"].(string)
		contains, _ := args["contains"].(string)
		attr, _ := args["context_attribute"].(string)
		mode := utility.ModeAll
		if m, _ := args["mode"].(string); m == "any" {
			mode = utility.ModeAny
		}
		return NewGlobMultiCondition(name, attr, pattern, contains, mode), nil
	})
}
