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

// Package engine is the transformation interpreter: the dispatcher, template
// driver, and upgrade driver that walk a recipe tree against a staged working
// directory. It knows utilities only through pkg/utility's shape interfaces,
// and knows staging and notification only through the Stager and Listener
// interfaces declared here — concrete implementations (pkg/stage,
// pkg/listener) depend on this package, not the other way around.
package engine

import (
	"github.com/walteh/transmute/pkg/txcontext"
	"github.com/walteh/transmute/pkg/utility"
)

// Application is the input application directory a transformation is run against.
type Application struct {
	// Folder is the path to the existing application directory. It is
	// read, never mutated; all mutation happens on the staged copy.
	Folder string
}

// Configuration carries transformation-wide options.
type Configuration struct {
	// OutputFolder, if set, overrides where the staged working directory's
	// parent is created. It must already exist.
	OutputFolder string
}

// Template is an ordered tree of utilities encoding one transformation pass.
type Template struct {
	Name      string
	Utilities []utility.TransformationUtility
}

// UpgradeStep is one named template in an UpgradePath.
type UpgradeStep struct {
	Name     string
	Template Template
}

// UpgradePath is a sequence of templates taking an application from one
// version to another. Steps are walked in slice order; there is no
// hasNext/next cursor because a Go slice range already yields each step
// exactly once, in order.
type UpgradePath struct {
	Name  string
	Steps []UpgradeStep
}

// Transformation is either a single Template or an UpgradePath, applied
// against Application with Configuration. TransformedApplicationLocation is
// populated by staging before any utility runs.
type Transformation struct {
	Application   Application
	Configuration Configuration

	Template    *Template
	UpgradePath *UpgradePath

	TransformedApplicationLocation string
}

// IsUpgradePath reports whether this transformation is an upgrade path
// rather than a single template.
func (t *Transformation) IsUpgradePath() bool {
	return t.UpgradePath != nil
}

// TransformationResult is returned by Perform on both success and abort (the
// abort case is additionally signalled via the returned error).
type TransformationResult struct {
	WorkingDirectory     string
	ManualInstructions   []txcontext.ManualInstructionRecord
	Aborted              bool
	AbortMessage         string
	AbortingUtilityName  string
}
