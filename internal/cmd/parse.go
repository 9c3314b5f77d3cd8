package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/grokline/internal/output"
	"github.com/atikulmunna/grokline/internal/pipeline"
)

func runParse(cmd *cobra.Command, args []string) error {
	format, err := output.SelectFormat(viper.GetBool("json"), viper.GetBool("csv"))
	if err != nil {
		return err
	}

	// Positional arguments are extra inputs.
	inputs := append(viper.GetStringSlice("input"), args...)

	p, err := pipeline.New(pipeline.Options{
		Pattern:     viper.GetString("pattern"),
		PatternsDir: viper.GetString("patterns"),
		NoDefaults:  viper.GetBool("no-patterns"),
		Inputs:      inputs,
		Output:      viper.GetString("output"),
		Format:      format,
	}, os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	stats, err := p.Run()
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"parsed": stats.Parsed,
		"failed": stats.Failed,
		"lines":  stats.Total(),
	}).Debug("run complete")
	return nil
}
