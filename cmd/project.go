package cmd

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hepcomp/resource-model/model"
	"github.com/hepcomp/resource-model/model/report"
)

// project evaluates p and emits the requested report sections to w.
func project(w io.Writer, p *model.Parameters, opts report.Options, sections ...report.Section) error {
	pr, err := model.Run(p)
	if err != nil {
		return err
	}
	return report.Emit(w, pr, opts, sections...)
}

// sectionCommand builds a subcommand that reports the given sections.
func sectionCommand(use, short string, sections ...report.Section) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			p := loadParameters()
			if err := project(os.Stdout, p, reportOptions(), sections...); err != nil {
				logrus.Fatalf("Projection failed: %v", err)
			}
			logrus.Info("Projection complete.")
		},
	}
}

var (
	eventsCmd  = sectionCommand("events", "Report events produced per year and kind", report.SectionEvents)
	cpuCmd     = sectionCommand("cpu", "Report processing requirements against capacity", report.SectionCPU)
	storageCmd = sectionCommand("storage", "Report disk and tape occupancy against capacity", report.SectionStorage)
	runCmd     = sectionCommand("run", "Report events, processing and storage",
		report.SectionEvents, report.SectionCPU, report.SectionStorage)
)

func init() {
	rootCmd.AddCommand(eventsCmd, cpuCmd, storageCmd, runCmd)
}
