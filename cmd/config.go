package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hepcomp/resource-model/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective parameters",
	Long:  "Layer the parameter documents, apply defaults, validate and write the result as YAML to stdout.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := writeParameters(os.Stdout, loadParameters()); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// writeParameters marshals p to YAML. The output loads back as a single
// document.
func writeParameters(w io.Writer, p *model.Parameters) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("YAML marshal failed: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)
}
