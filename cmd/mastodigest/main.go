package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mastodigest",
		Short: "Curate a Mastodon timeline into a ranked digest",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(digestCmd())
	root.AddCommand(boostCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(scorersCmd())

	return root
}

// runFlags are the per-run overrides shared by digest and boost.
type runFlags struct {
	hours     int
	scorer    string
	threshold string
	timeline  string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.hours, "hours", "n", 0, "hours of timeline to digest (1-24, default: from config)")
	cmd.Flags().StringVarP(&f.scorer, "scorer", "s", "", "post scoring criteria (see 'mastodigest scorers')")
	cmd.Flags().StringVarP(&f.threshold, "threshold", "t", "", "threshold criteria: lax, normal or strict")
	cmd.Flags().StringVarP(&f.timeline, "timeline", "f", "", "timeline to digest: home, local, federated, hashtag:tag or list:id")
}

func digestCmd() *cobra.Command {
	var (
		flags     runFlags
		outputDir string
		theme     string
	)

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Fetch, curate and render the digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(flags, outputDir, theme)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "output directory for the rendered digest")
	cmd.Flags().StringVar(&theme, "theme", "", "template theme directory")
	return cmd
}

func boostCmd() *cobra.Command {
	var (
		flags     runFlags
		maxPerRun int
	)

	cmd := &cobra.Command{
		Use:   "boost",
		Short: "Fetch, curate and re-share the top posts at a controlled pace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoost(flags, maxPerRun)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&maxPerRun, "max", 0, "max boosts this run (default: from config)")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rendered digest and boost history over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func scorersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scorers",
		Short: "List available scorers and thresholds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScorers()
		},
	}
}
