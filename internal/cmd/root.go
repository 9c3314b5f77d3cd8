package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd runs the extraction pipeline when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "grokline",
	Short: "Extract fields from log lines with grok patterns",
	Long: `grokline matches every input line against one grok pattern and writes
the captured fields as JSON or CSV, followed by the number of parsed and
failed lines. Lines that do not match go to the error stream (or the .err
file next to --output) and never stop the run.

Examples:
  grokline -p '%{IP:client} %{WORD:verb} %{URIPATHPARAM:path}' -i access.log
  grokline -p '%{client}' --patterns ./patterns --no-patterns -i "logs/**/*.log" --csv
  tail -n 100 app.log | grokline -p '%{TIMESTAMP_ISO8601:ts} %{LOGLEVEL:level}' -o out.json`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runParse,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render("error:"), err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.grokline.yaml)")
	pf.Bool("debug", false, "print debugging output")
	pf.StringP("pattern", "p", "", "grok pattern to match each line against")
	pf.String("patterns", "", "directory of custom pattern definitions (one \"NAME definition\" per line)")
	pf.Bool("no-patterns", false, "do not load the built-in pattern catalog")

	f := rootCmd.Flags()
	f.StringArrayP("input", "i", nil, "input file or glob, may be repeated; reads stdin when omitted or \"-\"")
	f.StringP("output", "o", "", "output file; failures go to <output>.err (default: stdout/stderr)")
	f.BoolP("csv", "c", false, "write CSV")
	f.BoolP("json", "j", false, "write JSON lines (default)")

	bindFlags(pf, "debug", "pattern", "patterns", "no-patterns")
	bindFlags(f, "input", "output", "csv", "json")
}

func initConfig() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".grokline")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("grokline")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	err := viper.ReadInConfig()

	if viper.GetBool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	}
	switch {
	case err == nil:
		logrus.WithFields(logrus.Fields{
			"file": viper.ConfigFileUsed(),
		}).Debug("loaded config file")
	case cfgFile != "":
		logrus.WithFields(logrus.Fields{
			"file":  cfgFile,
			"error": err,
		}).Warn("could not read config file")
	}
}
