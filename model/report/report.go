package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/hepcomp/resource-model/model"
)

// Options selects the outputs written besides the text tables.
type Options struct {
	OutputDir    string // directory for every file output
	CSV          bool   // one CSV file per table
	Workbook     string // XLSX file name, empty to skip
	Samples      bool   // disk_samples.json and tape_samples.json
	PromTextfile string // Prometheus textfile name, empty to skip
}

func (o Options) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(o.OutputDir, name)
}

// Emit prints the tables of the requested sections to w and writes the file
// outputs enabled in opts.
func Emit(w io.Writer, pr *model.Projection, opts Options, sections ...Section) error {
	tables := Tables(pr, sections...)
	for _, t := range tables {
		if err := WriteText(w, t); err != nil {
			return err
		}
	}

	wantsFiles := opts.CSV || opts.Workbook != "" || opts.Samples || opts.PromTextfile != ""
	if !wantsFiles {
		return nil
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if opts.CSV {
		for _, t := range tables {
			path, err := WriteCSV(opts.OutputDir, t)
			if err != nil {
				return err
			}
			logrus.Infof("Wrote %s", path)
		}
	}
	if opts.Workbook != "" {
		path := opts.path(opts.Workbook)
		if err := WriteWorkbook(path, tables); err != nil {
			return err
		}
		logrus.Infof("Wrote %s (%d sheets)", path, len(tables))
	}
	if opts.Samples {
		if err := WriteSamples(opts.OutputDir, pr.Storage); err != nil {
			return err
		}
		logrus.Infof("Wrote %s and %s in %s", DiskSamplesFile, TapeSamplesFile, opts.OutputDir)
	}
	if opts.PromTextfile != "" {
		path := opts.path(opts.PromTextfile)
		if err := WriteTextfile(path, pr); err != nil {
			return err
		}
		logrus.Infof("Wrote %s", path)
	}
	return nil
}
