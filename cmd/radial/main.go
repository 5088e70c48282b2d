// Command radial draws polar charts from CSV or XLSX files.
//
//	radial templates
//	radial columns results.csv
//	radial render results.csv --items subject --values score --groups team --out chart.png
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/radial/internal/chart"
	"github.com/JonMunkholm/radial/internal/core"
	"github.com/JonMunkholm/radial/internal/logging"
	"github.com/JonMunkholm/radial/internal/render"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	templatesDir string
	logLevel     string
	maxSize      int64
	sheet        string
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "radial",
		Short:         "Draw polar charts from tabular data",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Logs go to stderr so chart output can be piped.
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), o.logLevel, "text"))
		},
	}

	cmd.PersistentFlags().StringVar(&o.templatesDir, "templates", "", "Template directory (default: built-in templates)")
	cmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().Int64Var(&o.maxSize, "max-size", core.DefaultMaxSourceSize, "Largest accepted input in bytes")
	cmd.PersistentFlags().StringVar(&o.sheet, "sheet", "", "Worksheet of an XLSX input (default: first sheet)")

	cmd.AddCommand(newTemplatesCmd(o), newColumnsCmd(o), newRenderCmd(o))
	return cmd
}

func (o *rootOptions) registry() *chart.Registry {
	return chart.NewDirRegistry(o.templatesDir)
}

// load reads path into a fresh session.
func (o *rootOptions) load(path string) (*core.Session, error) {
	sess := core.NewSession("cli", o.maxSize)
	var err error
	if core.IsWorkbook(path) {
		err = sess.LoadWorkbook(path, o.sheet)
	} else {
		err = sess.Load(path, true)
	}
	if err != nil {
		return nil, userError(err)
	}
	return sess, nil
}

func newTemplatesCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the available chart templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := o.registry()
			names, err := reg.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				tpl, err := reg.Resolve(name)
				if err != nil {
					fmt.Fprintf(out, "%s\t(invalid: %s)\n", name, core.MapError(err).Message)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", name, tpl.Kind, tpl.Title)
			}
			return nil
		},
	}
}

func newColumnsCmd(o *rootOptions) *cobra.Command {
	var preview int

	cmd := &cobra.Command{
		Use:   "columns <file>",
		Short: "List the columns of a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := o.load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range sess.Columns() {
				fmt.Fprintln(out, c)
			}
			if preview > 0 {
				fmt.Fprintln(out)
				writeRows(out, sess.Table().Preview(preview))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&preview, "preview", 0, "Also print the first N rows")
	return cmd
}

func writeRows(w io.Writer, rows [][]string) {
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
}

// renderOptions are the flags of the render command.
type renderOptions struct {
	template string
	sel      core.Selection
	out      string
	format   string
	legend   bool
	yMin     float64
	yMax     float64
	colors   []string
	defaults bool
	width    int
	height   int
}

func newRenderCmd(o *rootOptions) *cobra.Command {
	r := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Draw a chart from a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, o, r, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&r.template, "template", "t", "circular_barchart", "Chart template name")
	f.StringVar(&r.sel.Items, "items", "", "Column holding the item labels")
	f.StringVar(&r.sel.Values, "values", "", "Column holding the numeric values")
	f.StringVar(&r.sel.Groups, "groups", "", "Column holding the group names")
	f.StringVarP(&r.out, "out", "o", "", "Output file; the extension picks svg or png (- for stdout)")
	f.StringVar(&r.format, "format", "", "Output format when it cannot be taken from --out: svg or png")
	f.BoolVar(&r.legend, "legend", true, "Draw the legend")
	f.Float64Var(&r.yMin, "ymin", -50, "Lower radial bound")
	f.Float64Var(&r.yMax, "ymax", 90, "Upper radial bound")
	f.StringArrayVar(&r.colors, "color", nil, "Group color as group=color (repeatable)")
	f.BoolVar(&r.defaults, "default-colors", false, "Assign the default palette in group order before --color")
	f.IntVar(&r.width, "width", render.DefaultWidth, "Image width in pixels")
	f.IntVar(&r.height, "height", render.DefaultHeight, "Image height in pixels")
	for _, name := range []string{"items", "values", "groups", "out"} {
		cmd.MarkFlagRequired(name)
	}
	return cmd
}

func runRender(cmd *cobra.Command, o *rootOptions, r *renderOptions, path string) error {
	format, err := r.outputFormat()
	if err != nil {
		return err
	}
	if err := core.CheckBounds(r.yMin, r.yMax); err != nil {
		return userError(err)
	}

	sess, err := o.load(path)
	if err != nil {
		return err
	}
	if r.defaults {
		if err := sess.AssignDefaultColors(r.sel.Groups); err != nil {
			return userError(err)
		}
	}
	for _, spec := range r.colors {
		group, c, ok := strings.Cut(spec, "=")
		if !ok || group == "" {
			return fmt.Errorf("--color %q: want group=color", spec)
		}
		if err := sess.SetColor(group, c); err != nil {
			return userError(err)
		}
	}

	sc, err := sess.Render(o.registry(), r.template, r.sel, chart.Options{
		ShowLegend: r.legend,
		YMin:       r.yMin,
		YMax:       r.yMax,
	})
	if err != nil {
		return userError(err)
	}

	opts := render.Options{Width: r.width, Height: r.height}
	if r.out == "-" {
		return render.Write(cmd.OutOrStdout(), sc, format, opts)
	}

	f, err := os.Create(r.out)
	if err != nil {
		return err
	}
	if err := render.Write(f, sc, format, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	slog.Info("chart written", "path", r.out, "template", r.template, "format", string(format))
	return nil
}

// outputFormat takes the format from --format, else from the --out extension.
func (r *renderOptions) outputFormat() (render.Format, error) {
	if r.format != "" {
		return render.ParseFormat(r.format)
	}
	ext := strings.TrimPrefix(filepath.Ext(r.out), ".")
	if ext == "" {
		return render.FormatSVG, nil
	}
	return render.ParseFormat(ext)
}

// userError attaches the user-facing message and support code to err.
func userError(err error) error {
	msg := core.MapError(err)
	return fmt.Errorf("%s (%s): %w", msg.Message, msg.Code, err)
}
