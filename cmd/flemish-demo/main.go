// Command flemish-demo runs small example applications.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flemish/app"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	logLevel   string
	theme      string
	jsonLogs   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "flemish-demo",
		Short:        "Run flemish example applications",
		SilenceUsage: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "settings file (YAML)")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn, error or off")
	flags.StringVar(&opts.theme, "theme", "", "dark or light")
	flags.BoolVar(&opts.jsonLogs, "json-logs", false, "log JSON instead of console text")

	root.AddCommand(
		newCounterCmd(opts),
		newTimerCmd(opts),
		newEditorCmd(opts),
		newWatchCmd(opts),
		newPictureCmd(opts),
	)
	return root
}

// settings loads the settings file and applies the command line on top.
func (o *options) settings() (app.Settings, error) {
	s, err := app.LoadSettings(o.configPath)
	if err != nil {
		return s, err
	}
	if o.logLevel != "" {
		s.LogLevel = o.logLevel
	}
	if o.theme != "" {
		s.Theme = o.theme
	}
	if o.jsonLogs {
		s.JSONLogs = true
	}
	return s, s.Validate()
}
