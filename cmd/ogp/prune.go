package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	pruneCmd.Flags().Bool("dry-run", false, "only print the images that would be removed")
	rootCmd.AddCommand(pruneCmd)
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove images that no page refers to",
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, err := cmd.Flags().GetBool("dry-run")
		if err != nil {
			return err
		}

		g, _, err := newGenerator(cmd)
		if err != nil {
			return err
		}

		removed, err := g.Prune(dryRun)
		if err != nil {
			return err
		}

		for _, rel := range removed {
			fmt.Println(rel)
		}

		return nil
	},
}
