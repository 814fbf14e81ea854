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
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/walteh/transmute/pkg/recipesource"
	goerrors "gitlab.com/tozd/go/errors"
)

// NewFetchRecipeCmd builds the `fetch-recipe` subcommand: download a recipe
// document from GitHub to stdout or, with --to, a local file.
func NewFetchRecipeCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "fetch-recipe <owner/repo> <ref> <path>",
		Short: "Fetch a recipe document from a GitHub repository",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, repo, ok := strings.Cut(args[0], "/")
			if !ok {
				return goerrors.Errorf("expected owner/repo, got %q", args[0])
			}

			src := recipesource.New()
			data, commitHash, err := src.GetRecipeSource(ctx, recipesource.Args{
				Owner: owner,
				Repo:  repo,
				Ref:   args[1],
				Path:  args[2],
			})
			if err != nil {
				return goerrors.Errorf("fetching recipe: %w", err)
			}

			if to == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}

			if err := os.WriteFile(to, data, 0o644); err != nil {
				return goerrors.Errorf("writing %q: %w", to, err)
			}
			cmd.PrintErrf("fetched %s/%s@%s:%s (commit %s) -> %s\n", owner, repo, args[1], args[2], commitHash, to)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "write the fetched recipe to this local path instead of stdout")
	return cmd
}
