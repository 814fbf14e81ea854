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

package result

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerformResult_IsException(t *testing.T) {
	tests := []struct {
		name string
		pr   PerformResult
		want bool
	}{
		{"error_perform", ErrorPerform("boom", errors.New("boom")), true},
		{"skipped_condition", SkippedCondition("not ready"), false},
		{"skipped_dependency", SkippedDependency("dep failed"), false},
		{"exec_op_success", ExecutionPerform(OpExecution(Success("done"))), false},
		{"exec_op_error", ExecutionPerform(OpExecution(OpErr("bad", errors.New("bad")))), true},
		{"exec_util_error", ExecutionPerform(UtilExecution(UtilErr("bad", errors.New("bad")))), true},
		{"exec_util_value", ExecutionPerform(UtilExecution(Val(BoolValue(true)))), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pr.IsException())
		})
	}
}

func TestPerformResult_DependencyFailure(t *testing.T) {
	tests := []struct {
		name string
		pr   PerformResult
		want bool
	}{
		{"skipped_condition_is_dependency_failure", SkippedCondition("x"), true},
		{"skipped_dependency_is_dependency_failure", SkippedDependency("x"), true},
		{"dispatch_error_is_dependency_failure", ErrorPerform("x", errors.New("x")), true},
		{"exec_error_is_dependency_failure", ExecutionPerform(OpExecution(OpErr("x", errors.New("x")))), true},
		{"exec_success_is_not_dependency_failure", ExecutionPerform(OpExecution(Success("x"))), false},
		{"exec_value_is_not_dependency_failure", ExecutionPerform(UtilExecution(Val(BoolValue(false)))), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pr.DependencyFailure())
		})
	}
}

func TestValue_AsBool(t *testing.T) {
	b, ok := BoolValue(true).AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	_, ok = FileSetValue([]string{"a"}).AsBool()
	assert.False(t, ok)
}

func TestValue_AsFileSet(t *testing.T) {
	files, ok := FileSetValue([]string{"a.txt", "b.txt"}).AsFileSet()
	assert.True(t, ok)
	assert.Equal(t, []string{"a.txt", "b.txt"}, files)

	_, ok = BoolValue(true).AsFileSet()
	assert.False(t, ok)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel…", Truncate("hello", 3))
	assert.Equal(t, "", Truncate("", 3))
}

func TestOpTagString(t *testing.T) {
	assert.Equal(t, "SUCCESS", OpSuccess.String())
	assert.Equal(t, "NO_OP", OpNoOp.String())
	assert.Equal(t, "WARNING", OpWarning.String())
	assert.Equal(t, "ERROR", OpError.String())
	assert.Equal(t, "UNKNOWN", OpUnknown.String())
}

func TestUtilTagString(t *testing.T) {
	assert.Equal(t, "NULL", UtilNull.String())
	assert.Equal(t, "VALUE", UtilValue.String())
	assert.Equal(t, "WARNING", UtilWarning.String())
	assert.Equal(t, "ERROR", UtilError.String())
}
