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
		Use:   "uta",
		Short: "Ingest geotagged posts and build a country-labeled training store",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(runCmd())
	root.AddCommand(ingestCmd())
	root.AddCommand(trainingCmd())
	root.AddCommand(classifyCmd())
	root.AddCommand(resampleCmd())
	root.AddCommand(statsCmd())

	return root
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll configured sources and ingest until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon()
		},
	}
}

func ingestCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest post events from a JSON-Lines file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngestFile(file)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "events file, one JSON post event per line")
	cmd.MarkFlagRequired("file")
	return cmd
}

func trainingCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "training",
		Short: "Dump the labeled training rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTraining(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON instead of CSV")
	return cmd
}

func classifyCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Dump the classification view (labeled rows plus the frozen unlabeled sample)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv, json or arff")
	return cmd
}

func resampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resample",
		Short: "Redraw the frozen unlabeled sample of the classification view",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResample()
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store counts per resolved country",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats()
		},
	}
}
