package diagplot

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/csd.report/internal/fsutil"
)

// Entry is one scenario outcome as shown in the HTML report.
type Entry struct {
	Name      string
	Estimator string
	Profile   string
	Passed    bool
	// Err is the estimator or synthesis error, if the scenario did not
	// reach the comparison.
	Err       string
	Decimal   int
	MaxAbsDev float64
	Unit      string
	Got       []float64
	Want      []float64
}

// WriteReport renders an HTML page with a deviation overview followed by
// one recovered-versus-true chart per scenario.
func WriteReport(w io.Writer, title string, entries []Entry) error {
	page := components.NewPage()
	page.SetPageTitle(title)
	page.AddCharts(overview(title, entries))
	for _, e := range entries {
		if len(e.Want) == 0 {
			continue
		}
		page.AddCharts(comparison(e))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// SaveReport writes the report to path on fsys.
func SaveReport(fsys fsutil.FileSystem, path, title string, entries []Entry) error {
	var buf bytes.Buffer
	if err := WriteReport(&buf, title, entries); err != nil {
		return err
	}
	if err := fsys.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("save report %s: %w", path, err)
	}
	return nil
}

func overview(title string, entries []Entry) *charts.Bar {
	names := make([]string, len(entries))
	data := make([]opts.BarData, len(entries))
	passed := 0
	pass, fail := generateColors(3)[1], generateColors(3)[0]
	for i, e := range entries {
		names[i] = e.Name
		c := hexColor(pass)
		if e.Passed {
			passed++
		} else {
			c = hexColor(fail)
		}
		data[i] = opts.BarData{Value: e.MaxAbsDev, ItemStyle: &opts.ItemStyle{Color: c}}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%d/%d scenarios passed", passed, len(entries))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "scenario", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "max |got - want|"}),
	)
	bar.SetXAxis(names).AddSeries("max abs deviation", data)
	return bar
}

func comparison(e Entry) *charts.Line {
	idx := make([]int, len(e.Want))
	want := make([]opts.LineData, len(e.Want))
	got := make([]opts.LineData, len(e.Got))
	for i := range e.Want {
		idx[i] = i
		want[i] = opts.LineData{Value: e.Want[i]}
	}
	for i := range e.Got {
		got[i] = opts.LineData{Value: e.Got[i]}
	}

	status := "pass"
	if !e.Passed {
		status = "FAIL"
	}
	subtitle := fmt.Sprintf("%s, %s profile, %s, decimal %d, max dev %.3g", e.Estimator, e.Profile, status, e.Decimal, e.MaxAbsDev)
	if e.Err != "" {
		subtitle = fmt.Sprintf("%s, %s profile, error: %s", e.Estimator, e.Profile, e.Err)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: e.Name, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "electrode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("CSD (%s)", e.Unit)}),
	)
	line.SetXAxis(idx).
		AddSeries("ground truth", want).
		AddSeries("recovered", got, charts.WithLineChartOpts(opts.LineChart{Step: "middle"}))
	return line
}
