package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/piwi3910/atlaspack/internal/engine"
	"github.com/piwi3910/atlaspack/internal/export"
	"github.com/piwi3910/atlaspack/internal/history"
	"github.com/piwi3910/atlaspack/internal/importer"
	"github.com/piwi3910/atlaspack/internal/model"
	"github.com/piwi3910/atlaspack/internal/project"
)

// packProject packs every loaded image of p with the project padding.
func packProject(p *model.Project) (model.PackResult, error) {
	if len(p.Images) == 0 {
		return model.PackResult{}, errors.Errorf("project %s has no images", p.Name())
	}
	packer := engine.New(p.Settings())
	result, err := packer.PackSprites(p.Images)
	if err != nil {
		return model.PackResult{}, errors.Wrap(err, "pack failed")
	}
	return result, nil
}

func printSummary(w io.Writer, result model.PackResult) {
	fmt.Fprintf(w, "atlas: %d x %d px, %d sprites, %.1f%% used\n",
		result.Width, result.Height, len(result.Placements), result.Utilization()*100)
}

func printPlacements(w io.Writer, result model.PackResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tX\tY\tW\tH")
	for _, p := range result.Placements {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", p.Rect.Name, p.X, p.Y, p.Rect.Width, p.Rect.Height)
	}
	return tw.Flush()
}

func newPackCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "pack <project>",
		Short: "Pack a project and print the layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.openProject(cmd, args[0])
			if err != nil {
				return err
			}
			result, err := packProject(p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printSummary(out, result)
			return printPlacements(out, result)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the pack result as JSON")
	return cmd
}

// exportTarget picks the output path: the flag, else the project export
// folder, else the folder of the project file.
func exportTarget(p *model.Project, output string) string {
	if output != "" {
		return output
	}
	dir := p.ExportFolder
	if dir == "" {
		dir = filepath.Dir(p.Path)
	}
	return filepath.Join(dir, p.Name()+".png")
}

func newExportCmd(a *app) *cobra.Command {
	var (
		output  string
		format  string
		report  bool
		preview bool
		preset  string
	)
	cmd := &cobra.Command{
		Use:   "export <project>",
		Short: "Write the atlas image and its descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger(cmd)
			p, err := a.openProject(cmd, args[0])
			if err != nil {
				return err
			}
			if preset != "" {
				pr, err := a.findPreset(preset)
				if err != nil {
					return err
				}
				if err := applyPreset(p, pr); err != nil {
					return err
				}
				if format == "" {
					format = pr.DescriptorFormat
				}
			}
			if format == "" {
				format = a.config.DescriptorFormat
			}
			format = strings.ToLower(format)

			result, err := packProject(p)
			if err != nil {
				return err
			}

			outputs, err := export.ExportProject(exportTarget(p, output), result, p.Padding, format)
			if err != nil {
				return errors.Wrap(err, "export failed")
			}
			written := []string{outputs.Image, outputs.Descriptor}

			if report {
				path := outputs.Base + ".pdf"
				if err := export.ExportReportPDF(path, p.Name(), result, p.Padding); err != nil {
					return errors.Wrap(err, "report failed")
				}
				written = append(written, path)
			}
			if preview {
				path := outputs.Base + "_preview.png"
				if err := export.WritePreviewPNG(path, result); err != nil {
					return errors.Wrap(err, "preview failed")
				}
				written = append(written, path)
			}

			if err := a.recordBuild(model.NewBuildRecord(p.Name(), result, p.Padding, outputs.Base)); err != nil {
				log.WithError(err).Warn("build not recorded")
			}

			p.ExportFolder = filepath.Dir(outputs.Image)
			if err := a.saveProject(p); err != nil {
				return err
			}
			a.config.ExportFolder = p.ExportFolder
			a.config.AddRecentProject(p.Path)
			if err := a.saveConfig(); err != nil {
				return err
			}

			log.WithField("format", format).Infof("exported %s", outputs.Base)
			out := cmd.OutOrStdout()
			printSummary(out, result)
			for _, w := range written {
				fmt.Fprintln(out, w)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path, the extension is replaced")
	cmd.Flags().StringVarP(&format, "format", "f", "", "descriptor format: txt, json, yaml or xlsx")
	cmd.Flags().BoolVar(&report, "report", false, "also write a PDF layout report")
	cmd.Flags().BoolVar(&preview, "preview", false, "also write a labelled layout preview")
	cmd.Flags().StringVar(&preset, "preset", "", "apply a saved preset before exporting")
	return cmd
}

func (a *app) recordBuild(rec model.BuildRecord) error {
	store, err := history.Open(project.HistoryPath(a.config))
	if err != nil {
		return err
	}
	defer store.Close()
	_, err = store.Record(rec)
	return err
}

// importRects reads a rect list, choosing the importer by extension.
func importRects(path string) importer.ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return importer.ImportExcel(path)
	case ".dxf":
		return importer.ImportDXF(path)
	default:
		return importer.ImportCSV(path)
	}
}

func newLayoutCmd(a *app) *cobra.Command {
	var (
		report  string
		preview string
	)
	cmd := &cobra.Command{
		Use:   "layout <rects.csv|rects.xlsx|shapes.dxf>",
		Short: "Pack a list of rectangles without images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := importRects(args[0])
			logImport(a.logger(cmd).WithField("file", args[0]), res)
			if len(res.Rects) == 0 {
				return errors.Errorf("no rectangles imported from %s", args[0])
			}

			result, err := engine.Pack(res.Rects)
			if err != nil {
				return errors.Wrap(err, "pack failed")
			}

			title := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			if report != "" {
				if err := export.ExportReportPDF(report, title, result, 0); err != nil {
					return errors.Wrap(err, "report failed")
				}
			}
			if preview != "" {
				if err := export.WritePreviewPNG(preview, result); err != nil {
					return errors.Wrap(err, "preview failed")
				}
			}

			out := cmd.OutOrStdout()
			printSummary(out, result)
			return printPlacements(out, result)
		},
	}
	cmd.Flags().StringVar(&report, "report", "", "write a PDF layout report to this path")
	cmd.Flags().StringVar(&preview, "preview", "", "write a PNG layout preview to this path")
	return cmd
}

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <project>",
		Short: "Compare the layout under alternative padding settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.openProject(cmd, args[0])
			if err != nil {
				return err
			}
			if len(p.Images) == 0 {
				return errors.Errorf("project %s has no images", p.Name())
			}

			results := engine.CompareScenarios(engine.BuildDefaultScenarios(p.Settings()), p.Images)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCENARIO\tPADDING\tSIZE\tAREA\tWASTE")
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(tw, "%s\t%d\terror: %v\t\t\n", r.Scenario.Name, r.Scenario.Settings.Padding, r.Err)
					continue
				}
				fmt.Fprintf(tw, "%s\t%d\t%dx%d\t%d\t%.1f%%\n",
					r.Scenario.Name, r.Scenario.Settings.Padding,
					r.Result.Width, r.Result.Height, r.ContainerArea, r.WastePercent)
			}
			return tw.Flush()
		},
	}
}
