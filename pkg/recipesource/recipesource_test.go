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

package recipesource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    Args
		wantErr bool
	}{
		{
			name: "valid",
			ref:  "acme/widgets@main:recipes/upgrade.yaml",
			want: Args{Owner: "acme", Repo: "widgets", Ref: "main", Path: "recipes/upgrade.yaml"},
		},
		{
			name:    "missing_ref_separator",
			ref:     "acme/widgets:recipes/upgrade.yaml",
			wantErr: true,
		},
		{
			name:    "missing_path_separator",
			ref:     "acme/widgets@main",
			wantErr: true,
		},
		{
			name:    "missing_owner_separator",
			ref:     "widgets@main:recipe.yaml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.ref)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_WithAuthTokenSetsAuthorizationHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	t.Setenv("GITHUB_TOKEN", "secret-token")
	src := New()

	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	src.client.BaseURL = base

	_, _, _ = src.client.Repositories.Get(context.Background(), "acme", "widgets")

	assert.Equal(t, "Bearer secret-token", gotAuth)
}
