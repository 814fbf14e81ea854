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

package commands

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/transmute/pkg/recipe"
	"github.com/walteh/transmute/pkg/utility"
	goerrors "gitlab.com/tozd/go/errors"
)

// NewPlanCmd builds the `plan` subcommand: a dry run that resolves and
// prints a recipe's effective utility tree and order stamps without staging
// or executing anything, named after the domain's UpgradePlan concept.
func NewPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <recipe-file> <app-dir>",
		Short: "Print the effective utility tree a recipe would run, without executing it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			recipePath := args[0]

			tmpl, upgradePath, err := recipe.Load(ctx, recipePath, nil)
			if err != nil {
				return goerrors.Errorf("loading recipe: %w", err)
			}

			var root pterm.TreeNode
			if upgradePath != nil {
				root = pterm.TreeNode{Text: fmt.Sprintf("upgrade path: %s", upgradePath.Name)}
				for i, step := range upgradePath.Steps {
					stepNode := pterm.TreeNode{Text: fmt.Sprintf("step %d: %s", i+1, step.Name)}
					stepNode.Children = treeNodes(step.Template.Utilities, "", 1)
					root.Children = append(root.Children, stepNode)
				}
			} else {
				root = pterm.TreeNode{Text: fmt.Sprintf("template: %s", tmpl.Name)}
				root.Children = treeNodes(tmpl.Utilities, "", 1)
			}

			rendered, err := pterm.DefaultTree.WithRoot(root).Srender()
			if err != nil {
				return goerrors.Errorf("rendering plan: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
	return cmd
}

// treeNodes builds a pterm.TreeNode for every utility in us, labelled with
// the dotted order stamp the dispatcher would assign, advancing the counter
// only past operation-or-parent utilities as the dispatcher itself does. A
// loop's body is listed once under the loop's stamp (`<order>.1`), not with
// the per-iteration stamps (`<order>.<iteration>.1`) the dispatcher uses.
func treeNodes(us []utility.TransformationUtility, prefix string, startAt int) []pterm.TreeNode {
	nodes := make([]pterm.TreeNode, 0, len(us))
	i := startAt
	for _, u := range us {
		order := strconv.Itoa(i)
		if prefix != "" {
			order = prefix + "." + strconv.Itoa(i)
		}

		node := pterm.TreeNode{Text: fmt.Sprintf("%s  %s (%s)", order, u.Name(), shapeOf(u))}
		if parent, ok := u.(utility.Parent); ok {
			node.Children = treeNodes(parent.Children(), order, 1)
		}
		nodes = append(nodes, node)

		if u.IsOperation() {
			i++
			continue
		}
		if _, isParent := u.(utility.Parent); isParent {
			i++
		}
	}
	return nodes
}

func shapeOf(u utility.TransformationUtility) string {
	switch {
	case u.IsOperation():
		return "operation"
	case isLoop(u):
		return "loop"
	case isParent(u):
		return "parent"
	case isMultipleConditions(u):
		return "multiple-conditions"
	case isFilterFiles(u):
		return "filter-files"
	default:
		return "utility"
	}
}

func isLoop(u utility.TransformationUtility) bool {
	_, ok := u.(utility.Loop)
	return ok
}

func isParent(u utility.TransformationUtility) bool {
	_, ok := u.(utility.Parent)
	return ok
}

func isMultipleConditions(u utility.TransformationUtility) bool {
	_, ok := u.(utility.MultipleConditions)
	return ok
}

func isFilterFiles(u utility.TransformationUtility) bool {
	_, ok := u.(utility.FilterFiles)
	return ok
}
