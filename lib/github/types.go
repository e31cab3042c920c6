// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

package github

// Repository is the slice of GitHub's repository object that ForgeFS
// cares about. The API returns hundreds of fields; modeling more of
// them here would only invite drift.
type Repository struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"` // "owner/repo"
	DefaultBranch string `json:"default_branch"`
	Private       bool   `json:"private"`
	Fork          bool   `json:"fork"`
	Description   string `json:"description"`
}
