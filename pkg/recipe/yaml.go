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
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// yamlUtilityRef mirrors UtilityRef with yaml tags.
type yamlUtilityRef struct {
	Type string         `yaml:"type"`
	Name string         `yaml:"name"`
	Args map[string]any `yaml:"args,omitempty"`
}

type yamlTemplate struct {
	Name      string           `yaml:"name"`
	Utilities []yamlUtilityRef `yaml:"utilities"`
}

type yamlUpgradeStep struct {
	Name     string       `yaml:"name"`
	Template yamlTemplate `yaml:"template"`
}

type yamlUpgradePath struct {
	Name  string            `yaml:"name"`
	Steps []yamlUpgradeStep `yaml:"steps"`
}

type yamlDocument struct {
	Template    *yamlTemplate    `yaml:"template,omitempty"`
	UpgradePath *yamlUpgradePath `yaml:"upgrade_path,omitempty"`
}

// YAMLParser implements Parser for the plain nested-mapping recipe format.
type YAMLParser struct{}

func init() {
	RegisterParser(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Document, error) {
	var doc yamlDocument
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Errorf("parsing YAML recipe: %w", err)
	}
	if doc.Template == nil && doc.UpgradePath == nil {
		return nil, errors.Errorf("recipe YAML names neither 'template' nor 'upgrade_path'")
	}
	return convertYAMLDocument(doc), nil
}

func convertYAMLDocument(doc yamlDocument) *Document {
	out := &Document{}
	if doc.Template != nil {
		tmpl := convertYAMLTemplate(*doc.Template)
		out.Template = &tmpl
	}
	if doc.UpgradePath != nil {
		out.UpgradePath = convertYAMLUpgradePath(*doc.UpgradePath)
	}
	return out
}

func convertYAMLTemplate(t yamlTemplate) TemplateDoc {
	td := TemplateDoc{Name: t.Name}
	for _, u := range t.Utilities {
		td.Utilities = append(td.Utilities, UtilityRef{Type: u.Type, Name: u.Name, Args: u.Args})
	}
	return td
}

func convertYAMLUpgradePath(p yamlUpgradePath) *UpgradePathDoc {
	up := &UpgradePathDoc{Name: p.Name}
	for _, s := range p.Steps {
		up.Steps = append(up.Steps, UpgradeStepDoc{Name: s.Name, Template: convertYAMLTemplate(s.Template)})
	}
	return up
}
