// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/newsdesk-engine/internal/cli"
	"github.com/pdiddy/newsdesk-engine/internal/storage"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Manage buckets and objects (mb, ls, cp, rm, rb)",
	Long: `Storage manages the staging bucket and its objects. The primary path
shells out to gsutil; pass --api to use the storage JSON API directly on
hosts without the CLI installed (mb, ls, and rb only).`,
}

// storageProject resolves the cloud project for API-path operations.
func storageProject(cmd *cobra.Command) (string, error) {
	p, _ := cmd.Flags().GetString("project")
	p = secretDefault("cloud-project", p)
	if p == "" {
		return "", fmt.Errorf("cloud project required: pass --project or add cloud-project to .secrets/")
	}
	return p, nil
}

var storageMbCmd = &cobra.Command{
	Use:   "mb [gs://bucket]",
	Short: "Create a bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		random, _ := cmd.Flags().GetBool("random")

		var uri string
		switch {
		case len(args) == 1:
			uri = args[0]
		case random:
			prefix, _ := cmd.Flags().GetString("prefix")
			uri = storage.RandomBucketURI(prefix)
		default:
			return fmt.Errorf("provide a bucket URI or use --random")
		}

		if useAPI, _ := cmd.Flags().GetBool("api"); useAPI {
			proj, err := storageProject(cmd)
			if err != nil {
				return err
			}
			client, err := storage.NewAPIClient(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.InsertBucket(cmd.Context(), proj, uri); err != nil {
				return err
			}
		} else {
			t, err := cli.DetectGsutil()
			if err != nil {
				return err
			}
			if err := storage.MakeBucket(t, uri); err != nil {
				return err
			}
		}
		fmt.Printf("Created bucket %s\n", uri)
		return nil
	},
}

var storageLsCmd = &cobra.Command{
	Use:   "ls [gs://bucket]",
	Short: "List buckets, or the objects in a bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		uri := ""
		if len(args) == 1 {
			uri = args[0]
		}

		var entries []string
		if useAPI, _ := cmd.Flags().GetBool("api"); useAPI {
			client, err := storage.NewAPIClient(cmd.Context())
			if err != nil {
				return err
			}
			if uri == "" {
				proj, err := storageProject(cmd)
				if err != nil {
					return err
				}
				entries, err = client.ListBuckets(cmd.Context(), proj)
				if err != nil {
					return err
				}
			} else {
				var err error
				entries, err = client.ListObjects(cmd.Context(), uri)
				if err != nil {
					return err
				}
			}
		} else {
			t, err := cli.DetectGsutil()
			if err != nil {
				return err
			}
			entries, err = storage.List(t, uri)
			if err != nil {
				return err
			}
		}

		for _, e := range entries {
			fmt.Println(e)
		}
		return nil
	},
}

var storageCpCmd = &cobra.Command{
	Use:   "cp <src> <dst>",
	Short: "Copy an object (local path or gs:// URI on either side)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := cli.DetectGsutil()
		if err != nil {
			return err
		}
		if err := storage.Copy(t, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Copied %s to %s\n", args[0], args[1])
		return nil
	},
}

var storageRmCmd = &cobra.Command{
	Use:   "rm <gs://bucket/object>",
	Short: "Delete an object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := cli.DetectGsutil()
		if err != nil {
			return err
		}
		if err := storage.Remove(t, args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

var storageRbCmd = &cobra.Command{
	Use:   "rb <gs://bucket>",
	Short: "Delete an empty bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("provide exactly one bucket URI")
		}
		if useAPI, _ := cmd.Flags().GetBool("api"); useAPI {
			client, err := storage.NewAPIClient(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.DeleteBucket(cmd.Context(), args[0]); err != nil {
				return err
			}
		} else {
			t, err := cli.DetectGsutil()
			if err != nil {
				return err
			}
			if err := storage.RemoveBucket(t, args[0]); err != nil {
				return err
			}
		}
		fmt.Printf("Removed bucket %s\n", args[0])
		return nil
	},
}

func init() {
	storageCmd.PersistentFlags().Bool("api", false, "use the storage JSON API instead of gsutil")
	storageCmd.PersistentFlags().String("project", "", "cloud project for API operations (default: cloud-project secret)")

	storageMbCmd.Flags().Bool("random", false, "generate a bucket name with a random suffix")
	storageMbCmd.Flags().String("prefix", "newsdesk-staging", "prefix for --random bucket names")

	storageCmd.AddCommand(storageMbCmd)
	storageCmd.AddCommand(storageLsCmd)
	storageCmd.AddCommand(storageCpCmd)
	storageCmd.AddCommand(storageRmCmd)
	storageCmd.AddCommand(storageRbCmd)

	rootCmd.AddCommand(storageCmd)
}
