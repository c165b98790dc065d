// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package project manages cloud project lifecycle through the gcloud CLI.
// Project identifiers are opaque strings; uniqueness and naming rules are
// enforced by the provider, not here.
package project

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/newsdesk-engine/internal/cli"
)

// Info is one project record as reported by the provider.
type Info struct {
	ProjectID      string `json:"projectId"`
	Name           string `json:"name"`
	ProjectNumber  string `json:"projectNumber"`
	LifecycleState string `json:"lifecycleState"`
	CreateTime     string `json:"createTime"`
}

// Account is one credentialed account as reported by the provider.
type Account struct {
	Account string `json:"account"`
	Status  string `json:"status"`
}

// RandomID returns a project identifier with a random suffix, e.g.
// "newsdesk-1a2b3c4d". Project IDs must be lowercase.
func RandomID(prefix string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return strings.ToLower(prefix) + "-" + suffix
}

// Create registers a new project. An empty name defaults to the ID on the
// provider side.
func Create(t *cli.Tool, id, name string) error {
	args := []string{"projects", "create", id}
	if name != "" {
		args = append(args, "--name="+name)
	}
	if err := t.Run(args...); err != nil {
		return fmt.Errorf("creating project %s: %w", id, err)
	}
	return nil
}

// List returns all projects visible to the active account.
func List(t *cli.Tool) ([]Info, error) {
	out, err := t.Output("projects", "list", "--format=json")
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	var projects []Info
	if err := json.Unmarshal(out, &projects); err != nil {
		return nil, fmt.Errorf("parsing project list: %w", err)
	}
	return projects, nil
}

// Describe returns the record for one project.
func Describe(t *cli.Tool, id string) (*Info, error) {
	out, err := t.Output("projects", "describe", id, "--format=json")
	if err != nil {
		return nil, fmt.Errorf("describing project %s: %w", id, err)
	}
	var info Info
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("parsing project record: %w", err)
	}
	return &info, nil
}

// Delete requests deletion of a project. The provider holds deleted
// projects in a recovery window before purging them.
func Delete(t *cli.Tool, id string) error {
	if err := t.Run("projects", "delete", id, "--quiet"); err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	return nil
}

// SetDefault makes id the active project for subsequent tool invocations.
func SetDefault(t *cli.Tool, id string) error {
	if err := t.Run("config", "set", "project", id); err != nil {
		return fmt.Errorf("setting default project %s: %w", id, err)
	}
	return nil
}

// Accounts returns the credentialed accounts known to the tool.
func Accounts(t *cli.Tool) ([]Account, error) {
	out, err := t.Output("auth", "list", "--format=json")
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	var accounts []Account
	if err := json.Unmarshal(out, &accounts); err != nil {
		return nil, fmt.Errorf("parsing account list: %w", err)
	}
	return accounts, nil
}

// FormatTable writes projects as a human-readable table to w.
func FormatTable(projects []Info, w io.Writer) {
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects found.")
		return
	}

	fmt.Fprintf(w, "%-30s  %-25s  %-10s  %s\n", "Project ID", "Name", "State", "Created")
	fmt.Fprintln(w, strings.Repeat("-", 85))
	for _, p := range projects {
		fmt.Fprintf(w, "%-30s  %-25s  %-10s  %s\n",
			p.ProjectID, truncate(p.Name, 25), p.LifecycleState, p.CreateTime)
	}
	fmt.Fprintf(w, "\n%d projects\n", len(projects))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
