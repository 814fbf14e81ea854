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

package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/walteh/transmute/pkg/builtinutil"
)

const textReplaceRecipe = `
template:
  name: rename-package
  utilities:
    - type: text-replace
      name: fix-import
      args:
        file: main.go
        replacements:
          - old: old/pkg
            new: new/pkg
`

// newRootForTest wraps sub in a bare root command carrying the global
// --output flag sub relies on via flag inheritance.
func newRootForTest(sub *cobra.Command) *cobra.Command {
	root := &cobra.Command{Use: "transmute"}
	root.PersistentFlags().StringVarP(&outputFlagTest, "output", "o", "", "")
	root.AddCommand(sub)
	return root
}

var outputFlagTest string

func testContext() context.Context {
	logger := zerolog.Nop()
	return logger.WithContext(context.Background())
}

func TestPlanCmd_PrintsTemplateTree(t *testing.T) {
	dir := t.TempDir()
	recipePath := filepath.Join(dir, "recipe.yaml")
	require.NoError(t, os.WriteFile(recipePath, []byte(textReplaceRecipe), 0o644))

	cmd := NewPlanCmd()
	root := newRootForTest(cmd)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"plan", recipePath, dir})

	require.NoError(t, root.ExecuteContext(testContext()))
	assert.Contains(t, out.String(), "rename-package")
	assert.Contains(t, out.String(), "fix-import")
	assert.Contains(t, out.String(), "operation")
}

func TestRunCmd_PerformsTransformationAndWritesStagedCopy(t *testing.T) {
	appDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "main.go"), []byte("import old/pkg"), 0o644))

	outputParent := t.TempDir()

	recipeDir := t.TempDir()
	recipePath := filepath.Join(recipeDir, "recipe.yaml")
	require.NoError(t, os.WriteFile(recipePath, []byte(textReplaceRecipe), 0o644))

	cmd := NewRunCmd()
	root := newRootForTest(cmd)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"run", recipePath, appDir, "--output", outputParent})

	require.NoError(t, root.ExecuteContext(testContext()))

	entries, err := os.ReadDir(outputParent)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	staged := filepath.Join(outputParent, entries[0].Name())
	data, err := os.ReadFile(filepath.Join(staged, "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "import new/pkg", string(data))

	original, err := os.ReadFile(filepath.Join(appDir, "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "import old/pkg", string(original))
}

func TestFetchRecipeCmd_RejectsMalformedOwnerRepo(t *testing.T) {
	cmd := NewFetchRecipeCmd()
	root := newRootForTest(cmd)
	root.SilenceErrors = true
	root.SilenceUsage = true
	root.SetArgs([]string{"fetch-recipe", "not-a-repo-ref", "main", "recipe.yaml"})

	err := root.ExecuteContext(testContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner/repo")
}
