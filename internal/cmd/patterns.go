package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/atikulmunna/grokline/internal/parser"
)

var patternsYAML bool

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List custom pattern definitions and check that a pattern compiles",
	Long: `List the definitions loaded from --patterns, sorted by name, in the
same "NAME definition" format the directory uses (or as YAML). With
--pattern, also compile the pattern against the resulting catalog.

Examples:
  grokline patterns --patterns ./patterns
  grokline patterns --patterns ./patterns --no-patterns -p '%{client} %{VERB:verb}'`,
	Args: cobra.NoArgs,
	RunE: runPatterns,
}

func init() {
	patternsCmd.Flags().BoolVar(&patternsYAML, "yaml", false, "print definitions as YAML")
	rootCmd.AddCommand(patternsCmd)
}

func runPatterns(cmd *cobra.Command, args []string) error {
	var aliases parser.AliasTable
	if dir := viper.GetString("patterns"); dir != "" {
		var err error
		if aliases, err = parser.LoadAliases(dir); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if patternsYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]string(aliases)); err != nil {
			return fmt.Errorf("encode patterns: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode patterns: %w", err)
		}
	} else {
		for _, name := range aliases.Names() {
			fmt.Fprintf(out, "%s %s\n", name, aliases[name])
		}
	}

	pattern := viper.GetString("pattern")
	if pattern == "" {
		return nil
	}
	if _, err := parser.NewExtractor(parser.Options{
		Pattern:     pattern,
		PatternsDir: viper.GetString("patterns"),
		NoDefaults:  viper.GetBool("no-patterns"),
	}); err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), styleOK.Render("✓"), "pattern compiles:", pattern)
	return nil
}
