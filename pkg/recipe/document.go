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

// Package recipe loads declarative recipe documents (YAML or HCL) describing
// a template or upgrade path in terms of registered utility factories, and
// resolves them into the engine package's Template/UpgradePath object graph.
// Grounded on the teacher's pkg/config: the same Parser/Register/GetParser
// registration-by-file-extension pattern, generalized from one config shape
// to recipe documents, plus the same dual YAML/HCL parser pair.
package recipe

// UtilityRef names a registered utility factory and the arguments to
// construct it with. Name is the instance name within the recipe (what
// Dependencies()/ExecuteIf() reference); Type selects the factory.
type UtilityRef struct {
	Type string
	Name string
	Args map[string]any
}

// TemplateDoc is the document-level description of an engine.Template,
// before its utility references are resolved against a Registry.
type TemplateDoc struct {
	Name      string
	Utilities []UtilityRef
}

// UpgradeStepDoc is one named step of an UpgradePathDoc.
type UpgradeStepDoc struct {
	Name     string
	Template TemplateDoc
}

// UpgradePathDoc is the document-level description of an engine.UpgradePath.
type UpgradePathDoc struct {
	Name  string
	Steps []UpgradeStepDoc
}

// Document is either a single template or an upgrade path, never both.
type Document struct {
	Template    *TemplateDoc
	UpgradePath *UpgradePathDoc
}
