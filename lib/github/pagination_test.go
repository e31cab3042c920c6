// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

package github

import "testing"

func TestParseLinkNext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "empty",
			header: "",
			want:   "",
		},
		{
			name:   "next and last",
			header: `<https://api.github.com/user/repos?page=2>; rel="next", <https://api.github.com/user/repos?page=5>; rel="last"`,
			want:   "https://api.github.com/user/repos?page=2",
		},
		{
			name:   "only prev",
			header: `<https://api.github.com/user/repos?page=1>; rel="prev"`,
			want:   "",
		},
		{
			name:   "malformed part ignored",
			header: `garbage, <https://api.github.com/user/repos?page=3>; rel="next"`,
			want:   "https://api.github.com/user/repos?page=3",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := parseLinkNext(test.header); got != test.want {
				t.Errorf("parseLinkNext(%q) = %q, want %q", test.header, got, test.want)
			}
		})
	}
}
