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
	"errors"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/transmute/pkg/engine"
	"github.com/walteh/transmute/pkg/listener"
	"github.com/walteh/transmute/pkg/recipe"
	"github.com/walteh/transmute/pkg/stage"
	goerrors "gitlab.com/tozd/go/errors"
)

// NewRunCmd builds the `run` subcommand: load a recipe, stage the
// application, perform the transformation, and report the outcome.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <recipe-file> <app-dir>",
		Short: "Run a recipe against an application directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			recipePath, appDir := args[0], args[1]
			output, _ := cmd.Flags().GetString("output")

			tmpl, upgradePath, err := recipe.Load(ctx, recipePath, nil)
			if err != nil {
				return goerrors.Errorf("loading recipe: %w", err)
			}

			tx := &engine.Transformation{
				Application:   engine.Application{Folder: appDir},
				Configuration: engine.Configuration{OutputFolder: output},
				Template:      tmpl,
				UpgradePath:   upgradePath,
			}

			stager := &stage.Stager{}
			lg := listener.New(cmd.OutOrStdout(), zerolog.Ctx(ctx).GetLevel())

			res, err := engine.Perform(ctx, tx, stager, []engine.Listener{lg})
			if err != nil {
				cmd.SilenceUsage = true
				var se *engine.StagingError
				if errors.As(err, &se) {
					return goerrors.Errorf("staging application: %w", err)
				}
				// The LoggingListener already printed the abort banner and
				// manual instructions; surface a bare failure to the shell.
				cmd.SilenceErrors = true
				return goerrors.Errorf("transformation aborted in %q", res.AbortingUtilityName)
			}

			return nil
		},
	}
	return cmd
}
