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

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/walteh/transmute/cmd/transmute/commands"
	_ "github.com/walteh/transmute/pkg/builtinutil"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "transmute",
		Short: "A recipe-driven transformation engine for migrating application source trees",
		Long: `transmute stages a copy of an application directory and drives a recipe of
utilities against it to perform a code migration, framework upgrade, or lint
remediation, leaving the original application untouched.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging()
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}

	addRootFlags(rootCmd)

	rootCmd.AddCommand(
		commands.NewRunCmd(),
		commands.NewPlanCmd(),
		commands.NewFetchRecipeCmd(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
