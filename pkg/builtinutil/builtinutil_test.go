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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/transmute/pkg/engine"
	"github.com/walteh/transmute/pkg/txcontext"
	"github.com/walteh/transmute/pkg/utility"
)

func TestTextReplace_SuccessWhenAllMatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("import old/pkg"), 0o644))

	u := NewTextReplace("fix-imports", "main.go", []Replacement{{Old: "old/pkg", New: "new/pkg"}})
	res := u.Execute(context.Background(), dir, txcontext.New("t", nil))

	require.Equal(t, 0, int(res.Kind)) // ExecutionKindOp
	assert.Equal(t, "SUCCESS", res.Op.Tag.String())

	got, err := os.ReadFile(filepath.Join(dir, "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "import new/pkg", string(got))
}

func TestTextReplace_NoOpWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	u := NewTextReplace("fix-imports", "missing.go", []Replacement{{Old: "a", New: "b"}})
	res := u.Execute(context.Background(), dir, txcontext.New("t", nil))
	assert.Equal(t, "NO_OP", res.Op.Tag.String())
}

func TestTextReplace_WarningOnPartialMatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("foo"), 0o644))

	u := NewTextReplace("fix", "main.go", []Replacement{{Old: "foo", New: "bar"}, {Old: "absent", New: "x"}})
	res := u.Execute(context.Background(), dir, txcontext.New("t", nil))
	assert.Equal(t, "WARNING", res.Op.Tag.String())
}

func TestContainsCondition(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello world"), 0o644))

	u := NewContainsCondition("has-hello", "a.txt", "hello")
	res := u.Execute(context.Background(), dir, txcontext.New("t", nil))
	b, ok := res.Util.Value.AsBool()
	require.True(t, ok)
	assert.True(t, b)

	missing := NewContainsCondition("has-hello-2", "missing.txt", "hello")
	res2 := missing.Execute(context.Background(), dir, txcontext.New("t", nil))
	b2, ok := res2.Util.Value.AsBool()
	require.True(t, ok)
	assert.False(t, b2)
}

func TestGlobFilter_EndToEndThroughEngine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("keep me"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("drop me"), 0o644))

	filter := NewGlobFilter("filter", "kept", "*.txt", "keep")

	tx := &engine.Transformation{
		Template:                       &engine.Template{Name: "t", Utilities: []utility.TransformationUtility{filter}},
		TransformedApplicationLocation: dir,
	}

	res, err := engine.Perform(context.Background(), tx, nil, nil)
	require.NoError(t, err)
	assert.False(t, res.Aborted)
}

func TestCountedLoop_EndToEndThroughEngine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "count.txt"), []byte("0"), 0o644))

	body := NewTextReplace("increment", "count.txt", []Replacement{{Old: "0", New: "1"}})
	loop := NewCountedLoop("loop", body, 2)

	tx := &engine.Transformation{
		Template:                       &engine.Template{Name: "t", Utilities: []utility.TransformationUtility{loop}},
		TransformedApplicationLocation: dir,
	}

	res, err := engine.Perform(context.Background(), tx, nil, nil)
	require.NoError(t, err)
	assert.False(t, res.Aborted)
	assert.Equal(t, 2, loop.iteration)
}

func TestManualNote_EndToEndThroughEngine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))

	filter := NewGlobFilter("filter", "kept", "*.txt", "x")
	note := NewManualNote("note", "review these files manually", "kept")

	tx := &engine.Transformation{
		Template:                       &engine.Template{Name: "t", Utilities: []utility.TransformationUtility{filter, note}},
		TransformedApplicationLocation: dir,
	}

	res, err := engine.Perform(context.Background(), tx, nil, nil)
	require.NoError(t, err)
	require.Len(t, res.ManualInstructions, 1)
	assert.Equal(t, "review these files manually", res.ManualInstructions[0].Message)
	assert.Equal(t, []string{"a.txt"}, res.ManualInstructions[0].Files)
}
