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

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

// hclRoot is the top-level shape: `template { ... }` or `upgrade_path { ... }`.
type hclRoot struct {
	Template    *hclTemplate    `hcl:"template,block"`
	UpgradePath *hclUpgradePath `hcl:"upgrade_path,block"`
}

type hclTemplate struct {
	Name      string       `hcl:"name"`
	Utilities []hclUtility `hcl:"utility,block"`
}

// hclUtility is `utility "type" "name" { <args...> }`; args are captured
// generically via Remain so a recipe author can pass whatever attributes the
// named factory expects without the parser knowing its schema.
type hclUtility struct {
	Type   string   `hcl:"type,label"`
	Name   string   `hcl:"name,label"`
	Remain hcl.Body `hcl:",remain"`
}

type hclUpgradePath struct {
	Name  string    `hcl:"name"`
	Steps []hclStep `hcl:"step,block"`
}

// hclStep is `step "name" { template { ... } }`.
type hclStep struct {
	Label    string      `hcl:"label,label"`
	Template hclTemplate `hcl:"template,block"`
}

// HCLParser implements Parser for the block-form recipe format.
type HCLParser struct{}

func init() {
	RegisterParser(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Document, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, "recipe.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL recipe: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{}}

	var root hclRoot
	diags = gohcl.DecodeBody(file.Body, evalCtx, &root)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL recipe: %s", diags.Error())
	}

	if root.Template == nil && root.UpgradePath == nil {
		return nil, errors.Errorf("recipe HCL names neither a 'template' nor an 'upgrade_path' block")
	}

	doc := &Document{}
	if root.Template != nil {
		td, err := convertHCLTemplate(*root.Template, evalCtx)
		if err != nil {
			return nil, err
		}
		doc.Template = td
	}
	if root.UpgradePath != nil {
		up, err := convertHCLUpgradePath(*root.UpgradePath, evalCtx)
		if err != nil {
			return nil, err
		}
		doc.UpgradePath = up
	}
	return doc, nil
}

func convertHCLTemplate(t hclTemplate, evalCtx *hcl.EvalContext) (*TemplateDoc, error) {
	td := &TemplateDoc{Name: t.Name}
	for _, u := range t.Utilities {
		args, err := decodeRemainArgs(u.Remain, evalCtx)
		if err != nil {
			return nil, errors.Errorf("utility %q: %w", u.Name, err)
		}
		td.Utilities = append(td.Utilities, UtilityRef{Type: u.Type, Name: u.Name, Args: args})
	}
	return td, nil
}

func convertHCLUpgradePath(p hclUpgradePath, evalCtx *hcl.EvalContext) (*UpgradePathDoc, error) {
	up := &UpgradePathDoc{Name: p.Name}
	for _, s := range p.Steps {
		td, err := convertHCLTemplate(s.Template, evalCtx)
		if err != nil {
			return nil, errors.Errorf("step %q: %w", s.Label, err)
		}
		up.Steps = append(up.Steps, UpgradeStepDoc{Name: s.Label, Template: *td})
	}
	return up, nil
}

// decodeRemainArgs evaluates every attribute of a utility block's remaining
// body into a plain Go value via cty, independent of the factory's schema.
func decodeRemainArgs(body hcl.Body, evalCtx *hcl.EvalContext) (map[string]any, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, errors.Errorf("reading utility attributes: %s", diags.Error())
	}

	args := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, errors.Errorf("evaluating attribute %q: %s", name, diags.Error())
		}
		args[name] = ctyToGo(v)
	}
	return args, nil
}

// ctyToGo converts a cty.Value to its nearest plain Go representation for
// the handful of primitive kinds a recipe argument realistically needs.
func ctyToGo(v cty.Value) any {
	if v.IsNull() {
		return nil
	}
	t := v.Type()
	switch {
	case t == cty.String:
		return v.AsString()
	case t == cty.Bool:
		return v.True()
	case t == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f
	case t.IsTupleType() || t.IsListType() || t.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, ctyToGo(ev))
		}
		return out
	case t.IsObjectType() || t.IsMapType():
		m := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			kv, ev := it.Element()
			m[kv.AsString()] = ctyToGo(ev)
		}
		return m
	default:
		return v.GoString()
	}
}
