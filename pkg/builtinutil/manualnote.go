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

	"github.com/walteh/transmute/pkg/recipe"
	"github.com/walteh/transmute/pkg/result"
	"github.com/walteh/transmute/pkg/txcontext"
	"github.com/walteh/transmute/pkg/utility"
)

// ManualNote is a ManualInstruction-shaped utility: it appends an
// operator-authored note to the context's instruction log, carrying along
// the current file set from FilesFrom (if that context attribute holds one)
// so the note can reference exactly which files prompted it.
type ManualNote struct {
	utility.Base
	Message   string
	FilesFrom string
}

// NewManualNote constructs a ManualNote. filesFrom names a context
// attribute holding a file set (e.g. a prior GlobFilter's output); empty
// means the note carries no files.
func NewManualNote(name, message, filesFrom string) *ManualNote {
	return &ManualNote{
		Base:      utility.Base{NameVal: name},
		Message:   message,
		FilesFrom: filesFrom,
	}
}

func (m *ManualNote) Execute(ctx context.Context, workingDir string, tctx *txcontext.Context) result.ExecutionResult {
	rec := txcontext.ManualInstructionRecord{
		UtilityName: m.Name(),
		Message:     m.Message,
	}
	if m.FilesFrom != "" {
		if v, ok := tctx.Get(m.FilesFrom); ok {
			if files, ok := v.AsFileSet(); ok {
				rec.Files = files
			}
		}
	}
	return result.UtilExecution(result.UtilResult{
		Tag:   result.UtilValue,
		Value: result.Value{Kind: result.ValueKindManualInstruction, Other: rec},
	})
}

func init() {
	recipe.Register("manual-note", func(name string, args map[string]any) (utility.TransformationUtility, error) {
		message, _ := args["message"].(string)
		filesFrom, _ := args["files_from"].(string)
		return NewManualNote(name, message, filesFrom), nil
	})
}
