// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/newsdesk-engine/internal/cli"
	"github.com/pdiddy/newsdesk-engine/internal/project"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage the cloud project (create, list, describe, delete, set)",
	Long: `Project manages the cloud project the pipeline runs against, through the
gcloud CLI. Project IDs are globally unique; use --random to generate an
ID with a random suffix.`,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [project-id]",
	Short: "Create a new cloud project",
	RunE: func(cmd *cobra.Command, args []string) error {
		random, _ := cmd.Flags().GetBool("random")
		name, _ := cmd.Flags().GetString("name")

		var id string
		switch {
		case len(args) == 1:
			id = args[0]
		case random:
			prefix, _ := cmd.Flags().GetString("prefix")
			id = project.RandomID(prefix)
		default:
			return fmt.Errorf("provide a project ID or use --random")
		}

		t, err := cli.DetectGcloud()
		if err != nil {
			return err
		}
		if err := project.Create(t, id, name); err != nil {
			return err
		}
		fmt.Printf("Created project %s\n", id)

		if setDefault, _ := cmd.Flags().GetBool("set-default"); setDefault {
			if err := project.SetDefault(t, id); err != nil {
				return err
			}
			fmt.Printf("Set default project to %s\n", id)
		}
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects visible to the active account",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := cli.DetectGcloud()
		if err != nil {
			return err
		}
		projects, err := project.List(t)
		if err != nil {
			return err
		}
		project.FormatTable(projects, os.Stdout)
		return nil
	},
}

var projectDescribeCmd = &cobra.Command{
	Use:   "describe <project-id>",
	Short: "Show the record for one project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := cli.DetectGcloud()
		if err != nil {
			return err
		}
		info, err := project.Describe(t, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Project ID:      %s\n", info.ProjectID)
		fmt.Printf("Name:            %s\n", info.Name)
		fmt.Printf("Project number:  %s\n", info.ProjectNumber)
		fmt.Printf("State:           %s\n", info.LifecycleState)
		fmt.Printf("Created:         %s\n", info.CreateTime)
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete a project (held in a recovery window before purge)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := cli.DetectGcloud()
		if err != nil {
			return err
		}
		if err := project.Delete(t, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted project %s\n", args[0])
		return nil
	},
}

var projectSetCmd = &cobra.Command{
	Use:   "set <project-id>",
	Short: "Set the default project for tool invocations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := cli.DetectGcloud()
		if err != nil {
			return err
		}
		if err := project.SetDefault(t, args[0]); err != nil {
			return err
		}
		fmt.Printf("Set default project to %s\n", args[0])
		return nil
	},
}

var projectAuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "List credentialed accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := cli.DetectGcloud()
		if err != nil {
			return err
		}
		accounts, err := project.Accounts(t)
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Println("No credentialed accounts. Run: gcloud auth login")
			return nil
		}
		for _, a := range accounts {
			fmt.Printf("%-40s  %s\n", a.Account, a.Status)
		}
		return nil
	},
}

func init() {
	projectCreateCmd.Flags().String("name", "", "human-readable project name")
	projectCreateCmd.Flags().Bool("random", false, "generate a project ID with a random suffix")
	projectCreateCmd.Flags().String("prefix", "newsdesk", "prefix for --random project IDs")
	projectCreateCmd.Flags().Bool("set-default", false, "set the new project as default")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectDescribeCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	projectCmd.AddCommand(projectSetCmd)
	projectCmd.AddCommand(projectAuthCmd)

	rootCmd.AddCommand(projectCmd)
}
