// Command reindexer synchronizes the relational resource catalog into the search index.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/reindexer/internal/version"
)

const programName = "reindexer"

// options are the command-line inputs of one run.
type options struct {
	configPath   string
	logLevel     string
	groups       string
	types        string
	affiliations string
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr, runReindex))
}

// execute runs the CLI and returns the process exit status.
func execute(args []string, stdout, stderr io.Writer, run func(opts options, stderr io.Writer) int) int {
	code := 0
	root := newRootCmd(stdout, stderr, func(opts options) {
		code = run(opts, stderr)
	})
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		// cobra already printed usage errors
		return 1
	}
	return code
}

func newRootCmd(stdout, stderr io.Writer, run func(opts options)) *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:   programName + " -c CONFIG [-g GROUP,...] [-t TYPE,...] [-a AFFILIATION,...]",
		Short: "Reindex catalog resources into the search index",
		Long: `Reads resources and their relations from the catalog database and writes one search
document per resource. Without -g/-t/-a the whole index is deleted and rebuilt; with any
filter only matching documents are overwritten and the rest of the index is kept.

Only one instance may run at a time; the PID file configured as pid_file is the lock.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		Run: func(_ *cobra.Command, _ []string) {
			run(opts)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (YAML or JSON, required)")
	root.Flags().StringVarP(&opts.logLevel, "log", "l", "", "Log level override: debug, info, warning, error, critical")
	root.Flags().StringVarP(&opts.groups, "group", "g", "", "Comma-separated resource groups to reindex")
	root.Flags().StringVarP(&opts.types, "type", "t", "", "Comma-separated resource types to reindex")
	root.Flags().StringVarP(&opts.affiliations, "affiliation", "a", "", "Comma-separated affiliations to reindex")
	if err := root.MarkFlagRequired("config"); err != nil {
		panic(err)
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", programName, version.String())
		},
	})

	return root
}
