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

package listener

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/walteh/transmute/pkg/engine"
	"github.com/walteh/transmute/pkg/txcontext"
)

func TestLoggingListener_PostTransformation_PrintsInstructions(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.InfoLevel)

	c := txcontext.New("t1", nil)
	c.AppendInstruction(txcontext.ManualInstructionRecord{
		UtilityName: "note",
		Message:     "update the README",
		Files:       []string{"README.md"},
	})

	tx := &engine.Transformation{TransformedApplicationLocation: "/tmp/app-transformed-1"}
	l.PostTransformation(tx, []txcontext.ReadOnlyView{c.ReadOnly()})

	out := buf.String()
	assert.Contains(t, out, "/tmp/app-transformed-1")
	assert.Contains(t, out, "update the README")
	assert.Contains(t, out, "README.md")
}

func TestLoggingListener_PostTransformationAbort_PrintsBanner(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.InfoLevel)

	c := txcontext.New("t1", nil)
	c.Abort(errors.New("boom"), "stop", "utility-b")

	tx := &engine.Transformation{TransformedApplicationLocation: "/tmp/app-transformed-2"}
	l.PostTransformationAbort(tx, []txcontext.ReadOnlyView{c.ReadOnly()})

	out := buf.String()
	assert.Contains(t, out, "ABORTED")
	assert.Contains(t, out, "utility-b")
	assert.Contains(t, out, "stop")
}

func TestLoggingListener_PostTransformation_NoInstructionsOmitsSection(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.InfoLevel)

	c := txcontext.New("t1", nil)
	tx := &engine.Transformation{TransformedApplicationLocation: "/tmp/app-transformed-3"}
	l.PostTransformation(tx, []txcontext.ReadOnlyView{c.ReadOnly()})

	assert.NotContains(t, buf.String(), "manual instructions:")
}
