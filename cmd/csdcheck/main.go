// Command csdcheck runs the inverse-CSD round-trip validation and exits
// non-zero when any scenario fails.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/csd.report/internal/config"
	"github.com/banshee-data/csd.report/internal/diagplot"
	"github.com/banshee-data/csd.report/internal/fsutil"
	"github.com/banshee-data/csd.report/internal/history"
	"github.com/banshee-data/csd.report/internal/monitoring"
	"github.com/banshee-data/csd.report/internal/quadrature"
	"github.com/banshee-data/csd.report/internal/security"
	"github.com/banshee-data/csd.report/internal/validate"
	"github.com/banshee-data/csd.report/internal/version"
)

// errScenariosFailed makes the process exit 1 after the summary is printed.
var errScenariosFailed = errors.New("validation failed")

func main() {
	cmd := newRootCmd(os.Stdout, fsutil.OSFileSystem{})
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, errScenariosFailed) {
			os.Exit(1)
		}
		log.Fatalf("csdcheck: %v", err)
	}
}

type options struct {
	configPath string
	plotDir    string
	reportPath string
	historyDB  string
	verbose    bool
}

func newRootCmd(out io.Writer, fsys fsutil.FileSystem) *cobra.Command {
	var o options
	root := &cobra.Command{
		Use:   "csdcheck",
		Short: "Round-trip validation of inverse CSD estimators",
		Long: `csdcheck synthesizes laminar LFPs from known plane, disk and cylinder
sources, hands them to the standard, delta, step and spline estimators in
several unit scalings, and checks that the recovered densities match.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			monitoring.SetVerbose(o.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidation(out, fsys, o)
		},
	}
	root.SetOut(out)

	root.Flags().StringVar(&o.configPath, "config", "", "Validation config file (.json, .yaml or .yml)")
	root.Flags().StringVar(&o.plotDir, "plot-dir", "", "Write one diagnostic figure per scenario into this directory")
	root.Flags().StringVar(&o.reportPath, "report", "", "Write an HTML report to this file, or into this directory")
	root.PersistentFlags().StringVar(&o.historyDB, "history", "", "SQLite run history database")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "Log passing scenarios and quadrature details")

	root.AddCommand(newVersionCmd(out), newHistoryCmd(out, &o))
	return root
}

func loadConfig(path string) (*config.ValidationConfig, error) {
	if path == "" {
		return config.EmptyValidationConfig(), nil
	}
	return config.LoadValidationConfig(path)
}

func runValidation(out io.Writer, fsys fsutil.FileSystem, o options) error {
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return err
	}
	scenarios, err := validate.Scenarios(cfg)
	if err != nil {
		return err
	}

	in, err := quadrature.ByName(cfg.GetQuadratureStrategy())
	if err != nil {
		return err
	}
	opts := []validate.Option{
		validate.WithIntegrator(in, quadrature.Tolerance{Abs: cfg.GetQuadratureAbsTol(), Rel: cfg.GetQuadratureRelTol()}),
	}

	plotDir := o.plotDir
	if plotDir == "" && cfg.GetPlot() {
		plotDir = cfg.GetPlotDir()
	}
	if plotDir != "" {
		if err := security.ValidateOutputPath(plotDir); err != nil {
			return fmt.Errorf("plot directory: %w", err)
		}
		opts = append(opts, validate.WithFigures(diagplot.NewFigureWriter(fsys, plotDir)))
	}

	report := validate.Run(scenarios, opts...)
	fmt.Fprint(out, report.Summary())

	if o.reportPath != "" {
		path, err := reportFile(fsys, o.reportPath, report.Started)
		if err != nil {
			return err
		}
		if err := diagplot.SaveReport(fsys, path, "csdcheck round trip", report.Entries()); err != nil {
			return err
		}
		fmt.Fprintf(out, "report written to %s\n", path)
	}

	if o.historyDB != "" {
		if err := security.ValidateOutputPath(o.historyDB); err != nil {
			return fmt.Errorf("history database: %w", err)
		}
		db, err := history.Open(o.historyDB)
		if err != nil {
			return err
		}
		defer db.Close()
		id, err := db.Record(report, cfg)
		if err != nil {
			return err
		}
		monitoring.Debugf("recorded run %s in %s", id, o.historyDB)
	}

	if report.Failed() {
		return errScenariosFailed
	}
	return nil
}

// reportFile resolves the --report value. An existing directory receives a
// timestamped file named after the run.
func reportFile(fsys fsutil.FileSystem, path string, started time.Time) (string, error) {
	if err := security.ValidateOutputPath(path); err != nil {
		return "", fmt.Errorf("report path: %w", err)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return security.OutputFile(path, "csdcheck-"+started.Format("20060102-150405"), ".html")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create report dir: %w", err)
		}
	}
	return path, nil
}

func newVersionCmd(out io.Writer) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			if jsonOut {
				json.NewEncoder(out).Encode(info)
			} else {
				fmt.Fprintf(out, "csdcheck version %s\n", info)
			}
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newHistoryCmd(out io.Writer, o *options) *cobra.Command {
	var (
		limit int
		runID string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded validation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.historyDB == "" {
				return errors.New("history requires --history <database>")
			}
			if _, err := os.Stat(o.historyDB); err != nil {
				return fmt.Errorf("history database: %w", err)
			}
			db, err := history.Open(o.historyDB)
			if err != nil {
				return err
			}
			defer db.Close()

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			defer tw.Flush()

			if runID != "" {
				results, err := db.Scenarios(runID)
				if err != nil {
					return err
				}
				if len(results) == 0 {
					return fmt.Errorf("no scenarios recorded for run %s", runID)
				}
				fmt.Fprintln(tw, "SCENARIO\tMETHOD\tPROFILE\tSTATUS\tMAX|DEV|\tUNIT")
				for _, r := range results {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.3g\t%s\n", r.Scenario, r.Method, r.Profile, status(r.Passed), r.MaxAbsDev, r.Unit)
				}
				return nil
			}

			runs, err := db.ListRuns(limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(tw, "RUN\tSTARTED\tPASSED\tSTATUS")
			for _, r := range runs {
				started := time.Unix(0, r.StartedAt).Format(time.RFC3339)
				fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\n", r.RunID, started, r.Passed, r.Total, status(!r.Failed()))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Show the scenarios of one run")
	return cmd
}

func status(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}
