package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/piwi3910/atlaspack/internal/model"
	"github.com/piwi3910/atlaspack/internal/project"
)

func newConfigCmd(a *app) *cobra.Command {
	var (
		initDefaults bool
		backup       string
		restore      string
		format       string
		padding      int
		historyPath  string
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the application config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := a.logger(cmd)
			flags := cmd.Flags()
			changed := false

			if initDefaults {
				a.config = model.DefaultAppConfig()
				changed = true
			}
			if restore != "" {
				data, err := project.ImportAllData(restore)
				if err != nil {
					return err
				}
				a.config = data.Config
				if err := project.SavePresets(a.presetPath(), data.Presets); err != nil {
					return errors.Wrap(err, "failed to restore presets")
				}
				log.Infof("restored config and %d preset(s) from %s", len(data.Presets.Presets), restore)
				changed = true
			}
			if flags.Changed("format") {
				format = strings.ToLower(format)
				if !model.ValidFormat(format) {
					return errors.Errorf("unknown descriptor format %q", format)
				}
				a.config.DescriptorFormat = format
				changed = true
			}
			if flags.Changed("padding") {
				if padding < 0 {
					return errors.Wrapf(project.ErrInvalidPadding, "padding %d", padding)
				}
				a.config.DefaultPadding = padding
				changed = true
			}
			if flags.Changed("history") {
				a.config.HistoryPath = historyPath
				changed = true
			}

			if changed {
				if err := a.saveConfig(); err != nil {
					return err
				}
				log.Debugf("saved %s", a.configPath)
			}

			if backup != "" {
				presets, err := project.LoadPresets(a.presetPath())
				if err != nil {
					return errors.Wrap(err, "failed to load presets")
				}
				if err := project.ExportAllData(backup, a.config, presets); err != nil {
					return err
				}
				log.Infof("backed up config and %d preset(s) to %s", len(presets.Presets), backup)
			}

			data, err := json.MarshalIndent(a.config, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&initDefaults, "init", false, "reset the config to defaults")
	cmd.Flags().StringVar(&backup, "backup", "", "write config and presets to a backup file")
	cmd.Flags().StringVar(&restore, "restore", "", "restore config and presets from a backup file")
	cmd.Flags().StringVar(&format, "format", "", "default descriptor format")
	cmd.Flags().IntVar(&padding, "padding", 0, "default padding for new projects")
	cmd.Flags().StringVar(&historyPath, "history", "", "build history database path")
	return cmd
}

func newPresetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage saved export presets",
	}
	cmd.AddCommand(newPresetSaveCmd(a), newPresetListCmd(a), newPresetRemoveCmd(a))
	return cmd
}

func newPresetSaveCmd(a *app) *cobra.Command {
	var (
		description  string
		padding      int
		format       string
		exportFolder string
	)
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save or replace a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if padding < 0 {
				return errors.Wrapf(project.ErrInvalidPadding, "padding %d", padding)
			}
			if format == "" {
				format = a.config.DescriptorFormat
			}
			format = strings.ToLower(format)
			if !model.ValidFormat(format) {
				return errors.Errorf("unknown descriptor format %q", format)
			}

			store, err := project.LoadPresets(a.presetPath())
			if err != nil {
				return errors.Wrap(err, "failed to load presets")
			}
			preset := model.NewPreset(args[0], description, model.PackSettings{Padding: padding}, format)
			preset.ExportFolder = exportFolder
			store.Put(preset)
			if err := project.SavePresets(a.presetPath(), store); err != nil {
				return errors.Wrap(err, "failed to save presets")
			}

			a.logger(cmd).WithField("preset", args[0]).Info("saved")
			fmt.Fprintf(cmd.OutOrStdout(), "saved preset %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "preset description")
	cmd.Flags().IntVar(&padding, "padding", 0, "padding in px")
	cmd.Flags().StringVar(&format, "format", "", "descriptor format")
	cmd.Flags().StringVar(&exportFolder, "export-folder", "", "folder exports are written to")
	return cmd
}

func newPresetListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := project.LoadPresets(a.presetPath())
			if err != nil {
				return errors.Wrap(err, "failed to load presets")
			}
			out := cmd.OutOrStdout()
			if len(store.Presets) == 0 {
				fmt.Fprintln(out, "no presets saved")
				return nil
			}
			for _, p := range store.Presets {
				fmt.Fprintf(out, "%s\tpadding=%d\tformat=%s\t%s\n", p.Name, p.Settings.Padding, p.DescriptorFormat, p.Description)
			}
			return nil
		},
	}
}

func newPresetRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name|id>",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := project.LoadPresets(a.presetPath())
			if err != nil {
				return errors.Wrap(err, "failed to load presets")
			}
			if !store.Remove(args[0]) {
				return errors.Errorf("preset %q not found", args[0])
			}
			if err := project.SavePresets(a.presetPath(), store); err != nil {
				return errors.Wrap(err, "failed to save presets")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed preset %s\n", args[0])
			return nil
		},
	}
}
