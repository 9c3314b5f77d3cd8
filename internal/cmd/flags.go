package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red bold
	styleOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))             // green
	styleInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Faint(true) // cyan
)

// bindFlags makes each named flag readable through viper, so values can also
// come from the config file or GROKLINE_* environment variables.
func bindFlags(fs *pflag.FlagSet, names ...string) {
	for _, name := range names {
		if err := viper.BindPFlag(name, fs.Lookup(name)); err != nil {
			panic(err)
		}
	}
}
