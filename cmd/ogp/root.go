package main

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.tabichina.jp/site/core"
	"go.tabichina.jp/site/log"
	"go.tabichina.jp/site/ogp"
)

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default ./ogp.yaml if present)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

var rootCmd = &cobra.Command{
	Use:               "ogp",
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	Short:             "Generates the OGP images of the Alipay usage guide",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}

		if verbose {
			log.SetDebug(true)
		}

		return nil
	},
}

func newGenerator(cmd *cobra.Command, opts ...ogp.Option) (*ogp.Generator, *core.Config, error) {
	filename, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}

	c, err := core.ParseConfig(filename)
	if err != nil {
		return nil, nil, err
	}

	return ogp.NewGenerator(c, afero.NewOsFs(), opts...), c, nil
}
