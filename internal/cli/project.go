package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/piwi3910/atlaspack/internal/importer"
	"github.com/piwi3910/atlaspack/internal/model"
	"github.com/piwi3910/atlaspack/internal/project"
)

// logImport reports the per-file problems collected by an import.
func logImport(log *logrus.Entry, res importer.ImportResult) {
	for _, w := range res.Warnings {
		log.Warn(w)
	}
	for _, e := range res.Errors {
		log.Error(e)
	}
}

// openProject loads a project file and the sizes of its images.
func (a *app) openProject(cmd *cobra.Command, path string) (*model.Project, error) {
	p, err := project.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open project %s", path)
	}
	res := project.LoadImages(p)
	logImport(a.logger(cmd).WithField("project", p.Name()), res)
	return p, nil
}

func (a *app) saveProject(p *model.Project) error {
	if err := project.Save(p); err != nil {
		return errors.Wrapf(err, "failed to save project %s", p.Path)
	}
	return nil
}

// findPreset looks a preset up by name, then by ID.
func (a *app) findPreset(name string) (model.Preset, error) {
	store, err := project.LoadPresets(a.presetPath())
	if err != nil {
		return model.Preset{}, errors.Wrap(err, "failed to load presets")
	}
	if p := store.FindByName(name); p != nil {
		return *p, nil
	}
	if p := store.FindByID(name); p != nil {
		return *p, nil
	}
	return model.Preset{}, errors.Errorf("preset %q not found", name)
}

// applyPreset copies a preset into p, rejecting settings the packer would refuse.
func applyPreset(p *model.Project, preset model.Preset) error {
	preset.ApplyTo(p)
	if err := project.SetPadding(p, preset.Settings.Padding); err != nil {
		return errors.Wrapf(err, "preset %q", preset.Name)
	}
	return nil
}

func newNewCmd(a *app) *cobra.Command {
	var (
		presetName string
		padding    int
	)
	cmd := &cobra.Command{
		Use:   "new <project>",
		Short: "Create an empty project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := model.NewProject()
			a.config.ApplyToProject(&p)
			if err := project.SetPadding(&p, a.config.DefaultPadding); err != nil {
				return errors.Wrapf(err, "config %s", a.configPath)
			}

			if presetName != "" {
				preset, err := a.findPreset(presetName)
				if err != nil {
					return err
				}
				if err := applyPreset(&p, preset); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("padding") {
				if err := project.SetPadding(&p, padding); err != nil {
					return err
				}
			}

			if err := project.SaveAs(&p, args[0]); err != nil {
				return errors.Wrapf(err, "failed to create project %s", args[0])
			}
			a.config.AddRecentProject(p.Path)
			if err := a.saveConfig(); err != nil {
				return err
			}

			a.logger(cmd).WithField("padding", p.Padding).Infof("created %s", p.Path)
			fmt.Fprintln(cmd.OutOrStdout(), p.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&presetName, "preset", "", "apply a saved preset")
	cmd.Flags().IntVar(&padding, "padding", 0, "padding in px around every sprite")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <project> <image|dir>...",
		Short: "Add images or whole folders of images to a project",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger(cmd)
			p, err := a.openProject(cmd, args[0])
			if err != nil {
				return err
			}

			paths, err := importer.ExpandPaths(args[1:])
			if err != nil {
				return err
			}
			loaded := importer.LoadImages(paths)
			logImport(log, loaded)

			var valid []string
			for _, s := range loaded.Sprites {
				valid = append(valid, s.Path)
			}
			added, duplicates := project.AddImages(p, valid)
			for _, d := range duplicates {
				log.Warnf("%s is already in the project", d)
			}
			if len(added) == 0 {
				return errors.New("no images added")
			}

			if err := a.saveProject(p); err != nil {
				return err
			}
			a.config.ImageFolder = p.ImageFolder
			a.config.AddRecentProject(p.Path)
			if err := a.saveConfig(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "added %d image(s), %d in project\n", len(added), len(p.FileNames))
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <project> <name>...",
		Short: "Remove images by file name or path",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				return errors.Wrapf(err, "failed to open project %s", args[0])
			}
			n, err := project.RemoveImages(p, args[1:])
			if err != nil {
				return err
			}
			if err := a.saveProject(p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d image(s), %d in project\n", n, len(p.FileNames))
			return nil
		},
	}
}

func newPaddingCmd(a *app) *cobra.Command {
	var (
		toggle bool
		set    int
	)
	cmd := &cobra.Command{
		Use:   "padding <project>",
		Short: "Show or change the sprite padding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				return errors.Wrapf(err, "failed to open project %s", args[0])
			}

			changed := true
			switch {
			case toggle && cmd.Flags().Changed("set"):
				return errors.New("--toggle and --set are mutually exclusive")
			case toggle:
				project.TogglePadding(p)
			case cmd.Flags().Changed("set"):
				if err := project.SetPadding(p, set); err != nil {
					return err
				}
			default:
				changed = false
			}

			if changed {
				if err := a.saveProject(p); err != nil {
					return err
				}
				a.logger(cmd).Debugf("padding set to %d", p.Padding)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "padding: %d px\n", p.Padding)
			return nil
		},
	}
	cmd.Flags().BoolVar(&toggle, "toggle", false, "switch padding between 0 and 1")
	cmd.Flags().IntVar(&set, "set", 0, "set padding to an explicit value")
	return cmd
}
