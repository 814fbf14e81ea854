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

package engine

import (
	"fmt"

	"github.com/walteh/transmute/pkg/txcontext"
	"gitlab.com/tozd/go/errors"
)

// TransformationException unwinds a template on abort: either a utility
// failed with AbortOnFailure=true (class 2), or dispatch returned an error
// that was not already a TransformationException, which the template driver
// wraps as an internal one (class 3). Unknown result tags are only logged by
// the dispatcher and do not produce one. Both classes carry the context
// active at the moment of failure so callers can inspect what had already run.
type TransformationException struct {
	Message     string
	UtilityName string
	Context     *txcontext.Context
	Cause       error
}

func (e *TransformationException) Error() string {
	if e.UtilityName != "" {
		return fmt.Sprintf("%s (utility: %s)", e.Message, e.UtilityName)
	}
	return e.Message
}

func (e *TransformationException) Unwrap() error {
	return e.Cause
}

func newAbortException(message, utilityName string, cause error, tctx *txcontext.Context) *TransformationException {
	return &TransformationException{
		Message:     message,
		UtilityName: utilityName,
		Context:     tctx,
		Cause:       cause,
	}
}

func newInternalException(detail string, cause error, tctx *txcontext.Context) *TransformationException {
	return &TransformationException{
		Message: fmt.Sprintf("internal transformation error: %s", detail),
		Context: tctx,
		Cause:   cause,
	}
}

// StagingError is the fatal, pre-listener error returned when the working
// directory cannot be created or populated (class 4). It is intentionally a
// distinct type from TransformationException: staging failures happen before
// any context exists and before any listener is notified.
type StagingError struct {
	Path  string
	Cause error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("staging working directory %q: %s", e.Path, e.Cause)
}

func (e *StagingError) Unwrap() error {
	return e.Cause
}

// wrapf is a small helper matching the teacher's gitlab.com/tozd/go/errors
// wrapping convention used throughout the dispatcher and drivers.
func wrapf(format string, args ...any) error {
	return errors.Errorf(format, args...)
}
