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

// CountedLoop is a Loop utility that runs Body a fixed number of times, then
// reports false. Its own value is consulted by the dispatcher before every
// iteration; NextIteration advances the 1-based counter the dispatcher
// includes in the iteration's order stamp.
type CountedLoop struct {
	utility.Base
	Body  utility.TransformationUtility
	Times int

	iteration int
}

// NewCountedLoop constructs a CountedLoop.
func NewCountedLoop(name string, body utility.TransformationUtility, times int) *CountedLoop {
	return &CountedLoop{
		Base:  utility.Base{NameVal: name},
		Body:  body,
		Times: times,
	}
}

func (l *CountedLoop) Children() []utility.TransformationUtility {
	return []utility.TransformationUtility{l.Body}
}

func (l *CountedLoop) Run() utility.TransformationUtility     { return l.Body }
func (l *CountedLoop) Iterate() utility.TransformationUtility { return l }

func (l *CountedLoop) NextIteration() int {
	l.iteration++
	return l.iteration
}

func (l *CountedLoop) Execute(ctx context.Context, workingDir string, tctx *txcontext.Context) result.ExecutionResult {
	return result.UtilExecution(result.Val(result.BoolValue(l.iteration < l.Times)))
}

func init() {
	recipe.Register("counted-loop", func(name string, args map[string]any) (utility.TransformationUtility, error) {
		times := 0
		switch v := args["times"].(type) {
		case float64:
			times = int(v)
		case int:
			times = v
		}
		bodyRef, _ := args["body"].(map[string]any)
		bodyType, _ := bodyRef["type"].(string)
		bodyName, _ := bodyRef["name"].(string)
		bodyArgs, _ := bodyRef["args"].(map[string]any)

		var body utility.TransformationUtility
		if bodyType != "" {
			u, err := recipe.DefaultRegistry().Build(recipe.UtilityRef{Type: bodyType, Name: bodyName, Args: bodyArgs})
			if err != nil {
				return nil, err
			}
			body = u
		}
		return NewCountedLoop(name, body, times), nil
	})
}
