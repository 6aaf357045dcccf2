package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hepcomp/resource-model/model"
)

// Sample snapshot file names.
const (
	DiskSamplesFile = "disk_samples.json"
	TapeSamplesFile = "tape_samples.json"
)

// WriteSamples dumps every contribution to disk and tape occupancy, keyed by
// consuming year, into dir.
func WriteSamples(dir string, s *model.StorageModel) error {
	for _, f := range []struct {
		name    string
		samples map[int][]model.Sample
	}{
		{DiskSamplesFile, s.Disk.Samples},
		{TapeSamplesFile, s.Tape.Samples},
	} {
		data, err := json.MarshalIndent(f.samples, "", " ")
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", f.name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, f.name), data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
	}
	return nil
}
