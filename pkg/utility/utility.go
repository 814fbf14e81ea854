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

// Package utility defines the TransformationUtility shape and the optional
// capability interfaces (Parent, Loop, MultipleConditions, FilterFiles) a
// concrete utility may additionally implement. The engine never imports a
// concrete utility type; it only ever knows utilities through this package's
// interfaces, which is what lets the dispatcher stay agnostic to the actual
// catalogue of operations (XML edits, POM surgery, text replacement, ...).
package utility

import (
	"context"
	"fmt"

	"github.com/walteh/transmute/pkg/result"
	"github.com/walteh/transmute/pkg/txcontext"
)

// TransformationUtility is the base shape every utility must implement. It
// may be "only a utility", or simultaneously implement one or more of the
// capability interfaces below (Parent, Loop, MultipleConditions, FilterFiles).
// Operation vs. plain-utility is not a separate capability interface: the
// dispatcher routes each result by the Kind of the ExecutionResult Execute
// returns, while the order counter and skip logging use IsOperation.
type TransformationUtility interface {
	// Name identifies this utility; also the default context key its raw
	// PerformResult is saved under.
	Name() string

	// Description is a short human-readable label used in logging.
	Description() string

	// ContextAttributeName is where this utility's computed value should be
	// stored in the context. Defaults to Name() when empty.
	ContextAttributeName() string

	// SaveResult reports whether the dispatcher should persist this
	// utility's PerformResult (under Name()) and, for execution results,
	// its value (under ContextAttributeName()) into the context.
	SaveResult() bool

	// AbortOnFailure reports whether a failure of this utility should abort
	// the enclosing template.
	AbortOnFailure() bool

	// AbortionMessage is the message recorded on abort state when
	// AbortOnFailure is true. Empty means the dispatcher falls back to a
	// generic "<name> failed when performing transformation" message.
	AbortionMessage() string

	// Dependencies names other utilities (by Name()) whose PerformResult
	// must be a non-failure result before this utility may execute.
	Dependencies() []string

	// ExecuteIf names a context value (typically set by an earlier
	// utility) that must hold a true Boolean for this utility to execute.
	// Empty means no condition.
	ExecuteIf() string

	// IsOperation reports whether this utility is operation-shaped: it
	// mutates files and returns an OpResult, which means it also advances
	// the enclosing template/parent's operation counter. This is a fixed
	// property of the utility (set once by its constructor), not something
	// the dispatcher infers from a single Execute call, because a skipped
	// utility never calls Execute at all and the counter rule still needs
	// to apply to it.
	IsOperation() bool

	// Execute does the actual work: it mutates files (returning an
	// ExecutionResult wrapping an OpResult) or computes a value (wrapping
	// a UtilResult). It must not itself check Dependencies or ExecuteIf —
	// the engine checks them before calling Execute — and must not mutate the context's
	// instruction log, abort state, or another utility's saved result.
	Execute(ctx context.Context, workingDir string, tctx *txcontext.Context) result.ExecutionResult
}

// Parent is implemented by utilities that host an ordered list of children.
type Parent interface {
	TransformationUtility
	Children() []TransformationUtility
}

// Loop is a Parent that additionally runs a body utility while its own
// value (a Boolean UtilResult) is true, re-evaluating itself between
// iterations via Iterate.
type Loop interface {
	Parent
	// Run returns the utility to dispatch as the loop's body for the
	// current iteration.
	Run() TransformationUtility
	// Iterate returns the utility to dispatch, at the loop's own order
	// stamp, to re-evaluate the continuation condition. This is typically
	// the Loop itself.
	Iterate() TransformationUtility
	// NextIteration returns the 1-based index of the iteration about to
	// run, advancing the loop's internal counter.
	NextIteration() int
}

// ConditionMode selects how MultipleConditions folds its per-file sub-condition results.
type ConditionMode int

const (
	ModeAll ConditionMode = iota
	ModeAny
)

func (m ConditionMode) String() string {
	if m == ModeAny {
		return "ANY"
	}
	return "ALL"
}

// MultipleConditions is implemented by utilities whose value is a file set,
// each file of which is evaluated against a fresh per-file sub-condition;
// the boolean sub-results are folded per Mode.
type MultipleConditions interface {
	TransformationUtility
	Mode() ConditionMode
	// NewSubCondition returns a fresh utility evaluating the condition for
	// the given file. Its Execute must return a Boolean UtilResult.
	NewSubCondition(file string) TransformationUtility
}

// FilterFiles is implemented by utilities whose value is a file set,
// retaining only the files for which a fresh per-file sub-condition holds.
type FilterFiles interface {
	TransformationUtility
	// NewSubCondition returns a fresh utility evaluating the condition for
	// the given file. Its Execute must return a Boolean UtilResult.
	NewSubCondition(file string) TransformationUtility
}

// IsManualInstruction reports whether an ExecutionResult's value should be
// appended to the context's instruction log. This shape needs no marker
// interface: a ManualInstruction-shaped utility is fully identified by the
// ValueKind it returns, unlike Parent/Loop/MultipleConditions/FilterFiles
// which all add methods beyond Execute.
func IsManualInstruction(e result.ExecutionResult) (txcontext.ManualInstructionRecord, bool) {
	if e.Kind != result.ExecutionKindUtil || e.Util.Tag != result.UtilValue && e.Util.Tag != result.UtilWarning {
		return txcontext.ManualInstructionRecord{}, false
	}
	if e.Util.Value.Kind != result.ValueKindManualInstruction {
		return txcontext.ManualInstructionRecord{}, false
	}
	rec, ok := e.Util.Value.Other.(txcontext.ManualInstructionRecord)
	return rec, ok
}

// Base provides the common, non-Execute plumbing for a TransformationUtility:
// name/description/dependency bookkeeping with the right defaulting rules.
// Concrete utilities embed Base and implement only Execute (and, for
// capability shapes, the relevant extra methods).
type Base struct {
	NameVal             string
	DescriptionVal      string
	ContextAttributeVal string
	SaveResultOverride  *bool
	AbortOnFailureVal   bool
	AbortionMessageVal  string
	DependenciesVal     []string
	ExecuteIfVal        string
	OperationVal        bool
	// DefaultSaveResult is used when SaveResultOverride is nil: true for
	// operations by convention, false otherwise, set by the embedding
	// utility's constructor.
	DefaultSaveResult bool
}

func (b Base) Name() string        { return b.NameVal }
func (b Base) Description() string { return b.DescriptionVal }

func (b Base) ContextAttributeName() string {
	if b.ContextAttributeVal != "" {
		return b.ContextAttributeVal
	}
	return b.NameVal
}

func (b Base) SaveResult() bool {
	if b.SaveResultOverride != nil {
		return *b.SaveResultOverride
	}
	return b.DefaultSaveResult
}

func (b Base) AbortOnFailure() bool    { return b.AbortOnFailureVal }
func (b Base) AbortionMessage() string { return b.AbortionMessageVal }
func (b Base) Dependencies() []string  { return b.DependenciesVal }
func (b Base) ExecuteIf() string       { return b.ExecuteIfVal }
func (b Base) IsOperation() bool       { return b.OperationVal }

// DefaultAbortionMessage is the message used when AbortionMessage is empty.
func DefaultAbortionMessage(name string) string {
	return fmt.Sprintf("%s failed when performing transformation", name)
}
