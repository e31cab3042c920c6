// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListRepositoriesPaginates(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/users/alice/repos" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}

		switch request.URL.Query().Get("page") {
		case "", "1":
			writer.Header().Set("Link",
				fmt.Sprintf(`<%s/users/alice/repos?per_page=100&page=2>; rel="next"`, server.URL))
			json.NewEncoder(writer).Encode([]Repository{
				{Name: "alpha", FullName: "alice/alpha", DefaultBranch: "main"},
				{Name: "beta", FullName: "alice/beta", DefaultBranch: "main"},
			})
		case "2":
			json.NewEncoder(writer).Encode([]Repository{
				{Name: "gamma", FullName: "alice/gamma", DefaultBranch: "trunk"},
				{Name: "beta", FullName: "alice/beta", DefaultBranch: "main"}, // duplicate across pages
			})
		default:
			t.Errorf("unexpected page: %s", request.URL.RawQuery)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)
	repos, err := client.ListRepositories(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListRepositories: %v", err)
	}

	want := []string{"alpha", "beta", "gamma"}
	if len(repos) != len(want) {
		t.Fatalf("got %d repos, want %d", len(repos), len(want))
	}
	for i, name := range want {
		if repos[i].Name != name {
			t.Errorf("repos[%d].Name = %q, want %q", i, repos[i].Name, name)
		}
	}
}

func TestListRepositoriesETagReplay(t *testing.T) {
	fullResponses := 0
	var server *httptest.Server
	server = httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		page := request.URL.Query().Get("page")
		etag := `"page-1"`
		if page == "2" {
			etag = `"page-2"`
		}

		if request.Header.Get("If-None-Match") == etag {
			writer.WriteHeader(http.StatusNotModified)
			return
		}

		fullResponses++
		writer.Header().Set("ETag", etag)
		switch page {
		case "", "1":
			writer.Header().Set("Link",
				fmt.Sprintf(`<%s/users/alice/repos?per_page=100&page=2>; rel="next"`, server.URL))
			json.NewEncoder(writer).Encode([]Repository{{Name: "alpha"}})
		case "2":
			json.NewEncoder(writer).Encode([]Repository{{Name: "beta"}})
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)

	first, err := client.ListRepositoryNames(context.Background(), "alice")
	if err != nil {
		t.Fatalf("first ListRepositoryNames: %v", err)
	}

	// The second walk gets a 304 per page and must replay the cached
	// bodies, following the cached next-page link across both pages.
	second, err := client.ListRepositoryNames(context.Background(), "alice")
	if err != nil {
		t.Fatalf("second ListRepositoryNames: %v", err)
	}

	want := []string{"alpha", "beta"}
	for _, got := range [][]string{first, second} {
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("names = %v, want %v", got, want)
		}
	}
	if fullResponses != 2 {
		t.Errorf("full responses = %d, want 2 (second walk must be 304 replays)", fullResponses)
	}
}

func TestListRepositoryNames(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		json.NewEncoder(writer).Encode([]Repository{
			{Name: "toolkit", FullName: "bob/toolkit"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	names, err := client.ListRepositoryNames(context.Background(), "bob")
	if err != nil {
		t.Fatalf("ListRepositoryNames: %v", err)
	}
	if len(names) != 1 || names[0] != "toolkit" {
		t.Errorf("names = %v, want [toolkit]", names)
	}
}

func TestListRepositoriesNotFound(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
		json.NewEncoder(writer).Encode(map[string]string{"message": "Not Found"})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.ListRepositories(context.Background(), "nobody")
	if err == nil {
		t.Fatal("expected error for unknown identity")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
	// The materializer maps unknown identities to ENOENT through this.
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("errors.Is(%v, fs.ErrNotExist) = false, want true", err)
	}
}

func TestListRepositoriesEmptyIdentity(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{Token: "x"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.ListRepositories(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty identity")
	}
}
