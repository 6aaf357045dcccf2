package cmd

import (
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hepcomp/resource-model/model"
)

// documentPaths returns the parameter documents in load order: the defaults
// from dir unless disabled, then every override. Overrides may be comma
// separated; blank entries are dropped.
func documentPaths(dir string, withDefaults bool, overrides []string) []string {
	var paths []string
	if withDefaults {
		for _, name := range model.DefaultDocuments {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	for _, o := range overrides {
		for _, p := range strings.Split(o, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

// loadParameters loads the documents selected by the CLI flags.
func loadParameters() *model.Parameters {
	paths := documentPaths(configDir, !noDefaults, modelPaths)
	p, err := model.Load(paths)
	if err != nil {
		logrus.Fatalf("Failed to load parameters: %v", err)
	}
	logrus.Infof("Parameters loaded from %d documents, horizon %d-%d", len(paths), p.StartYear, p.EndYear)
	return p
}
