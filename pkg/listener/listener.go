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

// Package listener provides a reference engine.Listener: a console logger
// pairing structured zerolog records with fatih/color-styled human-readable
// lines, built the way the teacher's pkg/log logger pairs the two, but
// reporting on manual instructions and abort banners instead of file-copy
// operations.
package listener

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/transmute/pkg/engine"
	"github.com/walteh/transmute/pkg/txcontext"
)

// LoggingListener prints a colorized summary to Console and mirrors the same
// facts as structured zerolog records.
type LoggingListener struct {
	Console io.Writer
	Zlog    zerolog.Logger
	mu      sync.Mutex
}

var _ engine.Listener = (*LoggingListener)(nil)

// New creates a LoggingListener writing human-readable lines to console and
// structured records at level.
func New(console io.Writer, level zerolog.Level) *LoggingListener {
	return &LoggingListener{
		Console: console,
		Zlog:    zerolog.New(console).With().Timestamp().Logger().Level(level),
	}
}

// PostTransformation reports a successful run: total manual instructions and
// the working directory the caller can inspect.
func (l *LoggingListener) PostTransformation(tx *engine.Transformation, contexts []txcontext.ReadOnlyView) {
	l.mu.Lock()
	defer l.mu.Unlock()

	heading := color.New(color.Bold, color.FgGreen).Sprint("transmute")
	fmt.Fprintf(l.Console, "\n%s %s\n\n", heading, color.New(color.Faint).Sprint("• transformation complete"))
	fmt.Fprintf(l.Console, "  %s %s\n",
		color.New(color.FgCyan).Sprint("working directory:"),
		tx.TransformedApplicationLocation)

	instructions := collectInstructions(contexts)
	l.printInstructions(instructions)

	l.Zlog.Info().
		Str("working_directory", tx.TransformedApplicationLocation).
		Int("manual_instructions", len(instructions)).
		Int("contexts", len(contexts)).
		Msg("transformation complete")
}

// PostTransformationAbort reports an aborted run: the failing utility and
// its message, plus any manual instructions accumulated before the abort.
func (l *LoggingListener) PostTransformationAbort(tx *engine.Transformation, contexts []txcontext.ReadOnlyView) {
	l.mu.Lock()
	defer l.mu.Unlock()

	banner := color.New(color.Bold, color.FgRed).Sprint("ABORTED")
	fmt.Fprintf(l.Console, "\n%s %s\n\n", banner, color.New(color.Faint).Sprint("transformation did not complete"))

	var abortMessage, abortUtility string
	for _, c := range contexts {
		if info, ok := c.AbortInfo(); ok {
			abortMessage = info.Message
			abortUtility = info.UtilityName
			break
		}
	}

	fmt.Fprintf(l.Console, "  %s %s\n", color.New(color.FgRed).Sprint("utility:"), abortUtility)
	fmt.Fprintf(l.Console, "  %s %s\n", color.New(color.FgRed).Sprint("message:"), abortMessage)
	fmt.Fprintf(l.Console, "  %s %s\n",
		color.New(color.FgCyan).Sprint("working directory:"),
		tx.TransformedApplicationLocation)

	instructions := collectInstructions(contexts)
	l.printInstructions(instructions)

	l.Zlog.Error().
		Str("working_directory", tx.TransformedApplicationLocation).
		Str("aborting_utility", abortUtility).
		Str("abort_message", abortMessage).
		Msg("transformation aborted")
}

func (l *LoggingListener) printInstructions(instructions []txcontext.ManualInstructionRecord) {
	if len(instructions) == 0 {
		return
	}
	fmt.Fprintf(l.Console, "\n  %s\n", color.New(color.Bold, color.FgYellow).Sprint("manual instructions:"))
	for _, rec := range instructions {
		fmt.Fprintf(l.Console, "    %s %s %s\n",
			color.New(color.FgYellow).Sprint("•"),
			color.New(color.Faint).Sprint(rec.UtilityName+":"),
			rec.Message)
		for _, f := range rec.Files {
			fmt.Fprintf(l.Console, "      - %s\n", f)
		}
	}
}

// collectInstructions flattens every context's own manual-instruction
// records, in execution order, matching the aggregation engine.Perform
// performs for TransformationResult.
func collectInstructions(contexts []txcontext.ReadOnlyView) []txcontext.ManualInstructionRecord {
	var out []txcontext.ManualInstructionRecord
	for _, c := range contexts {
		out = append(out, c.Instructions()...)
	}
	return out
}
