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

// Package stage implements engine.Stager: it creates the working directory a
// transformation mutates and recursively copies the input application into
// it, so utilities never touch the caller's original tree. Grounded on the
// teacher's copyOperation (pkg/operation/copy.go), whose per-file copy loop
// this adapts into a per-top-level-entry bounded fan-out.
package stage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/transmute/pkg/engine"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// timestampLayout is the seconds-precision portion of the yyyyMMddHHmmssSSS
// suffix named in the working directory layout. Go's fractional-second verbs
// (".000") always emit a leading separator, so the millisecond digits are
// appended separately in Stage to keep the suffix separator-less.
const timestampLayout = "20060102150405"

// Stager stages an application directory into a freshly created working
// copy. Concurrency is the bounded-worker-count errgroup fan-out named for
// staging specifically: this is bulk I/O before any utility dispatch begins,
// not concurrent utility execution.
type Stager struct {
	// Concurrency bounds the number of top-level entries copied in parallel.
	// Zero selects a small sane default.
	Concurrency int
	// Now, if set, overrides the timestamp source (for deterministic tests).
	Now func() time.Time
}

var _ engine.Stager = (*Stager)(nil)

// Stage creates `<parent>/<appName>-transformed-<timestamp>/`, recursively
// copies tx.Application.Folder into it, and records the result on
// tx.TransformedApplicationLocation. I/O failure is wrapped as a
// *engine.StagingError, fatal and pre-listener.
func (s *Stager) Stage(ctx context.Context, tx *engine.Transformation) error {
	logger := zerolog.Ctx(ctx)

	src := tx.Application.Folder
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return &engine.StagingError{Path: src, Cause: errors.Errorf("application folder is not a directory: %w", err)}
	}

	parent, err := s.resolveParent(tx)
	if err != nil {
		return &engine.StagingError{Path: tx.Configuration.OutputFolder, Cause: err}
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ts := now()
	timestamp := fmt.Sprintf("%s%03d", ts.Format(timestampLayout), ts.Nanosecond()/1e6)
	dest := filepath.Join(parent, fmt.Sprintf("%s-transformed-%s", filepath.Base(src), timestamp))

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return &engine.StagingError{Path: dest, Cause: errors.Errorf("creating working directory: %w", err)}
	}

	logger.Info().Str("source", src).Str("destination", dest).Msg("staging working directory")

	if err := s.copyTree(ctx, src, dest); err != nil {
		return &engine.StagingError{Path: dest, Cause: err}
	}

	tx.TransformedApplicationLocation = dest
	return nil
}

// resolveParent picks the output folder per §4.1: the configured override
// (which must already exist), else the input application's own parent
// directory, else the process working directory.
func (s *Stager) resolveParent(tx *engine.Transformation) (string, error) {
	if tx.Configuration.OutputFolder != "" {
		info, err := os.Stat(tx.Configuration.OutputFolder)
		if err != nil || !info.IsDir() {
			return "", errors.Errorf("invalid output folder %q: %w", tx.Configuration.OutputFolder, err)
		}
		return tx.Configuration.OutputFolder, nil
	}
	if parent := filepath.Dir(tx.Application.Folder); parent != "." && parent != tx.Application.Folder {
		if info, err := os.Stat(parent); err == nil && info.IsDir() {
			return parent, nil
		}
	}
	return os.Getwd()
}

// copyTree fans out per top-level entry of src into a bounded errgroup,
// recursing into each entry's own subtree on the worker goroutine. A failure
// from any worker cancels the group; the first error wins.
func (s *Stager) copyTree(ctx context.Context, src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Errorf("reading directory %q: %w", src, err)
	}

	limit := s.Concurrency
	if limit <= 0 {
		limit = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			return copyEntry(filepath.Join(src, entry.Name()), filepath.Join(dest, entry.Name()))
		})
	}

	return g.Wait()
}

// copyEntry recursively copies one file or directory, used both as the
// per-top-level-entry unit of work and for recursing within a directory.
func copyEntry(src, dest string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return errors.Errorf("stat %q: %w", src, err)
	}

	if info.IsDir() {
		if err := os.MkdirAll(dest, info.Mode().Perm()); err != nil {
			return errors.Errorf("mkdir %q: %w", dest, err)
		}
		children, err := os.ReadDir(src)
		if err != nil {
			return errors.Errorf("reading directory %q: %w", src, err)
		}
		for _, child := range children {
			if err := copyEntry(filepath.Join(src, child.Name()), filepath.Join(dest, child.Name())); err != nil {
				return err
			}
		}
		return nil
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(src)
		if err != nil {
			return errors.Errorf("reading symlink %q: %w", src, err)
		}
		return os.Symlink(target, dest)
	}

	return copyFile(src, dest, info.Mode().Perm())
}

func copyFile(src, dest string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening %q: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Errorf("creating parent directory for %q: %w", dest, err)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return errors.Errorf("creating %q: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Errorf("copying %q to %q: %w", src, dest, err)
	}
	return nil
}
