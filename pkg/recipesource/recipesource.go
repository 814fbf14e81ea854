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

// Package recipesource fetches recipe documents from GitHub, independent of
// how pkg/recipe subsequently parses them. Grounded on the teacher's
// pkg/provider/github (GetFile/GetCommitHash/parseRepo), narrowed to the one
// operation a recipe source needs: fetch one file's bytes at a ref, plus the
// commit it resolved to.
package recipesource

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-github/v60/github"
	"gitlab.com/tozd/go/errors"
)

// Args names a recipe document to fetch: owner/repo@ref:path.
type Args struct {
	Owner string
	Repo  string
	Ref   string
	Path  string
}

// Source fetches recipe document bytes from GitHub.
type Source struct {
	client *github.Client
}

// New creates a Source. If the GITHUB_TOKEN environment variable is set, the
// client authenticates with it; otherwise it falls back to GitHub's
// unauthenticated (rate-limited) API, which is sufficient for public repos.
func New() *Source {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return &Source{client: github.NewClient(nil)}
	}
	return &Source{client: github.NewClient(nil).WithAuthToken(token)}
}

// GetRecipeSource fetches the recipe document at args.Path, args.Ref and
// returns its raw bytes alongside the commit hash the ref resolved to.
func (s *Source) GetRecipeSource(ctx context.Context, args Args) ([]byte, string, error) {
	commitHash, err := s.commitHash(ctx, args)
	if err != nil {
		return nil, "", errors.Errorf("resolving commit for %s/%s@%s: %w", args.Owner, args.Repo, args.Ref, err)
	}

	content, _, _, err := s.client.Repositories.GetContents(ctx, args.Owner, args.Repo, args.Path, &github.RepositoryContentGetOptions{
		Ref: args.Ref,
	})
	if err != nil {
		return nil, "", errors.Errorf("fetching %s at %s/%s@%s: %w", args.Path, args.Owner, args.Repo, args.Ref, err)
	}
	if content == nil {
		return nil, "", errors.Errorf("%s is a directory, not a recipe file", args.Path)
	}

	data, err := content.GetContent()
	if err != nil {
		return nil, "", errors.Errorf("decoding content of %s: %w", args.Path, err)
	}

	return []byte(data), commitHash, nil
}

func (s *Source) commitHash(ctx context.Context, args Args) (string, error) {
	ref, _, err := s.client.Git.GetRef(ctx, args.Owner, args.Repo, "refs/heads/"+args.Ref)
	if err == nil {
		return ref.Object.GetSHA(), nil
	}
	// args.Ref may already be a commit SHA or tag rather than a branch; fall
	// back to treating it as the commit hash verbatim.
	return args.Ref, nil
}

// ParseArgs splits an "owner/repo@ref:path" reference into Args.
func ParseArgs(ref string) (Args, error) {
	ownerRepo, rest, ok := strings.Cut(ref, "@")
	if !ok {
		return Args{}, errors.Errorf("expected owner/repo@ref:path, got %q", ref)
	}
	gitRef, path, ok := strings.Cut(rest, ":")
	if !ok {
		return Args{}, errors.Errorf("expected owner/repo@ref:path, got %q", ref)
	}
	owner, repo, ok := strings.Cut(ownerRepo, "/")
	if !ok {
		return Args{}, errors.Errorf("expected owner/repo@ref:path, got %q", ref)
	}
	return Args{Owner: owner, Repo: repo, Ref: gitRef, Path: filepath.Clean(path)}, nil
}
