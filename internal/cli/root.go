// Package cli implements the atlaspack command line.
package cli

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/piwi3910/atlaspack/internal/model"
	"github.com/piwi3910/atlaspack/internal/project"
)

// app is the state shared by every command of one invocation.
type app struct {
	configPath string
	logLevel   string

	config model.AppConfig
	log    *logrus.Logger
}

// NewRootCmd builds the atlaspack command tree.
func NewRootCmd() *cobra.Command {
	a := &app{log: logrus.New()}

	rootCmd := &cobra.Command{
		Use:           "atlaspack",
		Short:         "Pack sprite images into a texture atlas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", project.DefaultConfigPath(), "path to the config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides the config)")

	rootCmd.AddCommand(
		newNewCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newPaddingCmd(a),
		newPackCmd(a),
		newExportCmd(a),
		newLayoutCmd(a),
		newCompareCmd(a),
		newHistoryCmd(a),
		newConfigCmd(a),
		newPresetCmd(a),
	)
	return rootCmd
}

// setup loads the config and configures logging before any command runs.
func (a *app) setup(cmd *cobra.Command) error {
	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	cfg, err := project.LoadAppConfig(a.configPath)
	if err != nil {
		return errors.Wrapf(err, "failed to load config %s", a.configPath)
	}
	a.config = cfg

	level := a.config.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	a.log.SetLevel(lvl)
	return nil
}

// logger returns an entry tagged with the command name.
func (a *app) logger(cmd *cobra.Command) *logrus.Entry {
	return a.log.WithField("cmd", cmd.Name())
}

func (a *app) saveConfig() error {
	if err := project.SaveAppConfig(a.configPath, a.config); err != nil {
		return errors.Wrap(err, "failed to save config")
	}
	return nil
}

// presetPath keeps the preset store next to the config file, in the
// default config dir unless --config points elsewhere.
func (a *app) presetPath() string {
	if a.configPath == project.DefaultConfigPath() {
		return project.DefaultPresetPath()
	}
	return filepath.Join(filepath.Dir(a.configPath), "presets.json")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
