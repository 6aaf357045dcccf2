package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hepcomp/resource-model/model/report"
)

var (
	// CLI flags shared by every subcommand
	modelPaths   []string // Parameter documents layered over the defaults, in order
	noDefaults   bool     // Skip BaseModel.json and RealisticModel.json
	configDir    string   // Directory holding the default documents
	logLevel     string   // Log verbosity level
	outputDir    string   // Directory for file outputs
	xlsxFile     string   // Workbook name, empty to skip
	writeCSV     bool     // One CSV file per table
	writeSamples bool     // Disk and tape sample snapshots
	promTextfile string   // Prometheus textfile name, empty to skip
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "resource-model",
	Short: "Project computing resource needs of an experiment over a range of years",
	Long: "Evaluate events, processing and storage requirements against projected capacity. " +
		"Parameter documents given with --model override BaseModel.json and RealisticModel.json key by key.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// reportOptions collects the file output flags.
func reportOptions() report.Options {
	return report.Options{
		OutputDir:    outputDir,
		CSV:          writeCSV,
		Workbook:     xlsxFile,
		Samples:      writeSamples,
		PromTextfile: promTextfile,
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up persistent flags
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSliceVar(&modelPaths, "model", nil, "Parameter document to layer over the defaults (repeatable or comma separated)")
	flags.BoolVar(&noDefaults, "no-defaults", false, "Do not load BaseModel.json and RealisticModel.json")
	flags.StringVar(&configDir, "config-dir", ".", "Directory holding the default parameter documents")
	flags.StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	flags.StringVar(&outputDir, "output-dir", ".", "Directory for CSV, XLSX, sample and textfile outputs")
	flags.StringVar(&xlsxFile, "xlsx", "", "Write all tables to this XLSX workbook")
	flags.BoolVar(&writeCSV, "csv", false, "Write one CSV file per table")
	flags.BoolVar(&writeSamples, "samples", false, "Write disk_samples.json and tape_samples.json")
	flags.StringVar(&promTextfile, "prom-textfile", "", "Write per-year gauges to this Prometheus textfile")
}
