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

// Package builtinutil supplies a reference catalogue of concrete utilities
// exercising every dispatcher shape, registered into pkg/recipe's default
// registry so recipe documents can reference them by type key. Grounded on
// the teacher's pkg/text (SimpleTextReplacer) and pkg/operation/copy.go
// (ignore-pattern globbing, per-file operation shape).
package builtinutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/walteh/transmute/pkg/recipe"
	"github.com/walteh/transmute/pkg/result"
	"github.com/walteh/transmute/pkg/txcontext"
	"github.com/walteh/transmute/pkg/utility"
	"gitlab.com/tozd/go/errors"
)

// Replacement is one literal old-to-new string substitution.
type Replacement struct {
	Old string
	New string
}

// TextReplace is an Operation utility: it applies an ordered list of literal
// string replacements to one relative file. Grounded on SimpleTextReplacer's
// sequential strings.ReplaceAll loop, adapted from an in-memory reader/writer
// pair to reading and rewriting a file in the working directory.
type TextReplace struct {
	utility.Base
	File         string
	Replacements []Replacement
}

// NewTextReplace constructs a TextReplace operation.
func NewTextReplace(name, file string, replacements []Replacement) *TextReplace {
	return &TextReplace{
		Base:         utility.Base{NameVal: name, OperationVal: true, DefaultSaveResult: true},
		File:         file,
		Replacements: replacements,
	}
}

func (t *TextReplace) Execute(ctx context.Context, workingDir string, tctx *txcontext.Context) result.ExecutionResult {
	path := filepath.Join(workingDir, t.File)

	info, statErr := os.Stat(path)
	if os.IsNotExist(statErr) {
		return result.OpExecution(result.NoOp(t.File + " does not exist"))
	}
	if statErr != nil {
		return result.OpExecution(result.OpErr("stating file", errors.Errorf("stat %q: %w", path, statErr)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return result.OpExecution(result.OpErr("reading file", errors.Errorf("reading %q: %w", path, err)))
	}

	content := string(data)
	matched := 0
	for _, r := range t.Replacements {
		if r.Old == "" {
			continue
		}
		if strings.Contains(content, r.Old) {
			matched++
		}
		content = strings.ReplaceAll(content, r.Old, r.New)
	}

	if matched == 0 {
		return result.OpExecution(result.NoOp("no replacements matched in " + t.File))
	}

	if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
		return result.OpExecution(result.OpErr("writing file", errors.Errorf("writing %q: %w", path, err)))
	}

	details := formatReplaceDetails(t.File, matched, len(t.Replacements))
	if matched < len(t.Replacements) {
		return result.OpExecution(result.Warning(details))
	}
	return result.OpExecution(result.Success(details))
}

func formatReplaceDetails(file string, matched, total int) string {
	return fmt.Sprintf("%s: %d/%d replacements applied", file, matched, total)
}

func init() {
	recipe.Register("text-replace", func(name string, args map[string]any) (utility.TransformationUtility, error) {
		file, _ := args["file"].(string)
		if file == "" {
			return nil, errors.Errorf("text-replace %q: missing required arg 'file'", name)
		}
		var reps []Replacement
		raw, _ := args["replacements"].([]any)
		for _, item := range raw {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			old, _ := m["old"].(string)
			nw, _ := m["new"].(string)
			reps = append(reps, Replacement{Old: old, New: nw})
		}
		return NewTextReplace(name, file, reps), nil
	})
}
