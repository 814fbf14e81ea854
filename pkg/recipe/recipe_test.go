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

package recipe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/transmute/pkg/result"
	"github.com/walteh/transmute/pkg/txcontext"
	"github.com/walteh/transmute/pkg/utility"
)

// traceUtility is a minimal operation stub whose Execute records its own
// name into a shared slice, so a round-trip test can compare dispatch
// traces between two document formats without depending on pkg/builtinutil.
type traceUtility struct {
	utility.Base
	trace *[]string
}

func (t *traceUtility) Execute(ctx context.Context, workingDir string, tctx *txcontext.Context) result.ExecutionResult {
	*t.trace = append(*t.trace, t.Name())
	return result.OpExecution(result.Success("ok"))
}

func newTraceRegistry(trace *[]string) *Registry {
	r := NewRegistry()
	r.Register("trace", func(name string, args map[string]any) (utility.TransformationUtility, error) {
		return &traceUtility{Base: utility.Base{NameVal: name, OperationVal: true}, trace: trace}, nil
	})
	return r
}

func TestLoad_YAMLAndHCLRoundTripToIdenticalTrace(t *testing.T) {
	yamlDoc := `
template:
  name: flat-three
  utilities:
    - type: trace
      name: A
    - type: trace
      name: B
    - type: trace
      name: C
`
	hclDoc := `
template {
  name = "flat-three"

  utility "trace" "A" {}
  utility "trace" "B" {}
  utility "trace" "C" {}
}
`

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "recipe.yaml")
	hclPath := filepath.Join(dir, "recipe.hcl")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlDoc), 0o644))
	require.NoError(t, os.WriteFile(hclPath, []byte(hclDoc), 0o644))

	var yamlTrace, hclTrace []string

	yamlTmpl, yamlPath2, err := Load(context.Background(), yamlPath, newTraceRegistry(&yamlTrace))
	require.NoError(t, err)
	assert.Nil(t, yamlPath2)
	require.NotNil(t, yamlTmpl)

	hclTmpl, hclPath2, err := Load(context.Background(), hclPath, newTraceRegistry(&hclTrace))
	require.NoError(t, err)
	assert.Nil(t, hclPath2)
	require.NotNil(t, hclTmpl)

	require.Len(t, yamlTmpl.Utilities, 3)
	require.Len(t, hclTmpl.Utilities, 3)

	tctx := txcontext.New("flat-three", nil)
	for _, u := range yamlTmpl.Utilities {
		u.Execute(context.Background(), "/tmp", tctx)
	}
	for _, u := range hclTmpl.Utilities {
		u.Execute(context.Background(), "/tmp", tctx)
	}

	assert.Equal(t, []string{"A", "B", "C"}, yamlTrace)
	assert.Equal(t, yamlTrace, hclTrace, "YAML and HCL documents for the same template must resolve to identical dispatch traces")
}

func TestLoad_UnregisteredFactoryIsLoadTimeError(t *testing.T) {
	yamlDoc := `
template:
  name: t
  utilities:
    - type: does-not-exist
      name: A
`
	dir := t.TempDir()
	path := filepath.Join(dir, "recipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	_, _, err := Load(context.Background(), path, NewRegistry())
	require.Error(t, err)
}

func TestLoad_UnknownExtensionFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recipe.txt")
	require.NoError(t, os.WriteFile(path, []byte("irrelevant"), 0o644))

	_, _, err := Load(context.Background(), path, NewRegistry())
	require.Error(t, err)
}
