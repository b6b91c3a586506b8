package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every page and the URL of its image",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, _, err := newGenerator(cmd)
		if err != nil {
			return err
		}

		images, err := g.Plan()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, img := range images {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", img.Slug, img.Type, img.ContentHash, img.URL)
		}

		return w.Flush()
	},
}
