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

	"github.com/rs/zerolog"
	"github.com/walteh/transmute/pkg/engine"
	"gitlab.com/tozd/go/errors"
)

// Parser decodes a recipe document format. Mirrors the teacher's
// pkg/config.Parser exactly: CanParse dispatches by filename, Parse decodes.
type Parser interface {
	Parse(ctx context.Context, data []byte) (*Document, error)
	CanParse(filename string) bool
}

var parsers []Parser

// RegisterParser registers a document-format parser, the same package-level
// registration the teacher's config.Register performs.
func RegisterParser(p Parser) {
	parsers = append(parsers, p)
}

// GetParser returns the first registered parser that can handle filename.
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// Load reads path, picks a parser by extension, decodes it into a Document,
// and resolves every utility reference against registry into the engine
// object graph. Returns exactly one of (Template, UpgradePath) populated. A
// nil registry falls back to DefaultRegistry(), the process-wide registry
// populated by factory packages' init() functions.
func Load(ctx context.Context, path string, registry *Registry) (*engine.Template, *engine.UpgradePath, error) {
	if registry == nil {
		registry = DefaultRegistry()
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading recipe")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Errorf("reading recipe file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, nil, errors.Errorf("no recipe parser registered for file: %s", path)
	}

	doc, err := p.Parse(ctx, data)
	if err != nil {
		return nil, nil, errors.Errorf("parsing recipe: %w", err)
	}

	return resolveDocument(doc, registry)
}

func resolveDocument(doc *Document, registry *Registry) (*engine.Template, *engine.UpgradePath, error) {
	switch {
	case doc.Template != nil:
		tmpl, err := resolveTemplate(*doc.Template, registry)
		if err != nil {
			return nil, nil, err
		}
		return tmpl, nil, nil
	case doc.UpgradePath != nil:
		path, err := resolveUpgradePath(*doc.UpgradePath, registry)
		if err != nil {
			return nil, nil, err
		}
		return nil, path, nil
	default:
		return nil, nil, errors.Errorf("recipe document names neither a template nor an upgrade path")
	}
}

func resolveTemplate(doc TemplateDoc, registry *Registry) (*engine.Template, error) {
	tmpl := &engine.Template{Name: doc.Name}
	for _, ref := range doc.Utilities {
		u, err := registry.Build(ref)
		if err != nil {
			return nil, errors.Errorf("resolving template %q: %w", doc.Name, err)
		}
		tmpl.Utilities = append(tmpl.Utilities, u)
	}
	return tmpl, nil
}

func resolveUpgradePath(doc UpgradePathDoc, registry *Registry) (*engine.UpgradePath, error) {
	path := &engine.UpgradePath{Name: doc.Name}
	for _, stepDoc := range doc.Steps {
		tmpl, err := resolveTemplate(stepDoc.Template, registry)
		if err != nil {
			return nil, errors.Errorf("resolving step %q: %w", stepDoc.Name, err)
		}
		path.Steps = append(path.Steps, engine.UpgradeStep{Name: stepDoc.Name, Template: *tmpl})
	}
	return path, nil
}
