package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.tabichina.jp/site/ogp"
)

func init() {
	generateCmd.Flags().BoolP("force", "f", false, "regenerate images that already exist")
	generateCmd.Flags().Int("workers", 0, "number of pages rendered concurrently (default from config)")
	generateCmd.Flags().Bool("prune", false, "remove images no page refers to after generating")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the OGP image of every page",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}

		workers, err := cmd.Flags().GetInt("workers")
		if err != nil {
			return err
		}

		prune, err := cmd.Flags().GetBool("prune")
		if err != nil {
			return err
		}

		g, c, err := newGenerator(cmd, ogp.WithWorkers(workers))
		if err != nil {
			return err
		}

		mode := "changed pages only"
		if force {
			mode = "all pages"
		}
		fmt.Printf("Generating OGP images (%s)\n", mode)

		start := time.Now()
		res, err := g.Run(cmd.Context(), force)
		if err != nil {
			return err
		}

		fmt.Printf("Processed %d pages (%d generated, %d cached) in %.2fs\n",
			res.Processed, res.Generated, res.Cached, time.Since(start).Seconds())
		fmt.Printf("Images written to %s\n", c.OutputDirectory)

		if !prune {
			return nil
		}

		removed, err := g.Prune(false)
		if err != nil {
			return err
		}

		fmt.Printf("Pruned %d stale images\n", len(removed))
		return nil
	},
}
