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

// Package txcontext implements the per-template key/value store, manual
// instruction log, and abort state that the engine threads through a
// template's dispatch and chains across an upgrade path's steps.
package txcontext

import (
	"sync"

	"github.com/walteh/transmute/pkg/result"
)

// ManualInstructionRecord describes work the user must perform by hand after
// the automated run, surfaced by a ManualInstruction-shaped utility.
type ManualInstructionRecord struct {
	UtilityName string
	Message     string
	Files       []string
}

// AbortState is recorded on a context the moment a utility with
// abortOnFailure=true fails, just before the dispatcher returns the
// TransformationException that unwinds the template driver.
type AbortState struct {
	Err         error
	Message     string
	UtilityName string
}

// Context is a per-template key/value store chained to its predecessor: a
// child context borrows read-through access to its parent's values and
// results, but only ever writes to its own maps. This is an owning chain,
// not a cycle — aggregating contexts for listeners walks the chain forward
// (oldest first), never backward through a parent pointer loop.
type Context struct {
	mu           sync.RWMutex
	parent       *Context
	templateName string
	values       map[string]result.Value
	results      map[string]result.PerformResult
	instructions []ManualInstructionRecord
	abort        *AbortState
}

// New creates a context for the named template, chained to predecessor (nil
// for the first step of a transformation).
func New(templateName string, predecessor *Context) *Context {
	return &Context{
		parent:       predecessor,
		templateName: templateName,
		values:       make(map[string]result.Value),
		results:      make(map[string]result.PerformResult),
	}
}

// TemplateName returns the name of the template this context is active for.
func (c *Context) TemplateName() string {
	return c.templateName
}

// Get reads a value by name, falling through to the predecessor chain when
// the current context has no entry for it.
func (c *Context) Get(name string) (result.Value, bool) {
	c.mu.RLock()
	v, ok := c.values[name]
	c.mu.RUnlock()
	if ok {
		return v, true
	}
	if c.parent != nil {
		return c.parent.Get(name)
	}
	return result.Value{}, false
}

// Set stores a value under name in this context only.
func (c *Context) Set(name string, v result.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = v
}

// GetResult reads a utility's raw PerformResult by its name, falling through
// to the predecessor chain.
func (c *Context) GetResult(name string) (result.PerformResult, bool) {
	c.mu.RLock()
	pr, ok := c.results[name]
	c.mu.RUnlock()
	if ok {
		return pr, true
	}
	if c.parent != nil {
		return c.parent.GetResult(name)
	}
	return result.PerformResult{}, false
}

// SetResult stores a utility's raw PerformResult under its name in this
// context only.
func (c *Context) SetResult(name string, pr result.PerformResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[name] = pr
}

// AppendInstruction appends a manual-instruction record to this context's
// log. Only the dispatcher is expected to call this (on behalf of a
// ManualInstruction-shaped utility); utilities must not call it directly.
func (c *Context) AppendInstruction(rec ManualInstructionRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instructions = append(c.instructions, rec)
}

// Instructions returns this context's own manual-instruction records, in
// append order. It does not include predecessor contexts' records; callers
// aggregating across an upgrade path collect each step's context in order.
func (c *Context) Instructions() []ManualInstructionRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ManualInstructionRecord, len(c.instructions))
	copy(out, c.instructions)
	return out
}

// Abort records abort state on this context: the causing error, the chosen
// message, and the name of the utility that triggered it.
func (c *Context) Abort(err error, message, utilityName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.abort != nil {
		return
	}
	c.abort = &AbortState{Err: err, Message: message, UtilityName: utilityName}
}

// IsAborted reports whether this context has recorded abort state.
func (c *Context) IsAborted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.abort != nil
}

// AbortInfo returns the recorded abort state, if any.
func (c *Context) AbortInfo() (AbortState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.abort == nil {
		return AbortState{}, false
	}
	return *c.abort, true
}

// ReadOnly returns an immutable projection of this context suitable for
// handing to listeners. The returned view exposes only accessors: there is
// no mutating method reachable from it, so "listeners must not mutate
// context contents" is enforced at the type level rather than by contract.
func (c *Context) ReadOnly() ReadOnlyView {
	return ReadOnlyView{c: c}
}

// ReadOnlyView is an immutable projection of a Context.
type ReadOnlyView struct {
	c *Context
}

// TemplateName returns the name of the template the wrapped context was active for.
func (v ReadOnlyView) TemplateName() string {
	return v.c.TemplateName()
}

// Get reads a value by name, falling through the chain like Context.Get.
func (v ReadOnlyView) Get(name string) (result.Value, bool) {
	return v.c.Get(name)
}

// GetResult reads a utility's raw PerformResult, falling through the chain.
func (v ReadOnlyView) GetResult(name string) (result.PerformResult, bool) {
	return v.c.GetResult(name)
}

// Instructions returns this context's own manual-instruction records.
func (v ReadOnlyView) Instructions() []ManualInstructionRecord {
	return v.c.Instructions()
}

// IsAborted reports whether the wrapped context recorded abort state.
func (v ReadOnlyView) IsAborted() bool {
	return v.c.IsAborted()
}

// AbortInfo returns the wrapped context's recorded abort state, if any.
func (v ReadOnlyView) AbortInfo() (AbortState, bool) {
	return v.c.AbortInfo()
}
