package report

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"time"
)

// Page is the data of one rendered HTML report.
type Page struct {
	Title     string
	Source    string
	Generated time.Time

	// Viewer controls; Files is empty for a static report.
	Files       []FileInfo
	HideMissing bool
	HideFail    bool

	Report *Report
}

type pageView struct {
	*Page
	Tables []tableView
	Legend string
}

type tableView struct {
	*Table
	Heading string
	Charts  []chartView
}

type chartView struct {
	Title   string
	Linear  template.URL
	Log     template.URL
	PNG     template.URL
	PNGName string
	SVGName string
}

// WriteHTML renders page with the tables and their charts.
func WriteHTML(w io.Writer, page *Page) error {
	view := pageView{Page: page, Legend: Legend}

	if page.Report != nil {
		for _, t := range page.Report.Tables() {
			tv := tableView{Table: t, Heading: "Write benchmark"}
			if t.Writer != "" {
				tv.Heading = "Read benchmark: files created by " + t.Writer
			}

			charts, err := chartViews(t)
			if err != nil {
				return err
			}

			tv.Charts = charts
			view.Tables = append(view.Tables, tv)
		}
	}

	if err := pageTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	return nil
}

func chartViews(t *Table) ([]chartView, error) {
	var views []chartView

	for _, m := range Metrics {
		linear, err := t.Plot(m, false)
		if errors.Is(err, errNoData) {
			continue
		}
		if err != nil {
			return nil, err
		}

		linearSVG, err := renderSVG(linear)
		if err != nil {
			return nil, err
		}

		png, err := renderPNG(linear)
		if err != nil {
			return nil, err
		}

		cv := chartView{
			Title:   linear.Title.Text,
			Linear:  dataURI("image/svg+xml", linearSVG),
			Log:     dataURI("image/svg+xml", linearSVG),
			PNG:     dataURI("image/png", png),
			PNGName: t.ChartName(m) + ".png",
			SVGName: t.ChartName(m) + ".svg",
		}

		// Log charts drop non-positive points and may end up empty.
		if logPlot, err := t.Plot(m, true); err == nil {
			logSVG, err := renderSVG(logPlot)
			if err != nil {
				return nil, err
			}

			cv.Log = dataURI("image/svg+xml", logSVG)
		}

		views = append(views, cv)
	}

	return views, nil
}

func dataURI(mime string, data []byte) template.URL {
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data))
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font: 14px/1.4 system-ui, sans-serif; margin: 0; background: #f6f7f9; color: #1d2330; }
header, main { padding: 16px 24px; }
header { background: #fff; border-bottom: 1px solid #dde1e7; display: flex; justify-content: space-between; flex-wrap: wrap; gap: 12px; }
h1 { font-size: 20px; margin: 0 0 4px; }
h2 { font-size: 16px; margin: 24px 0 8px; }
.sub, .legend { color: #5b6475; font-size: 12px; }
table { border-collapse: collapse; background: #fff; width: 100%; }
th, td { border: 1px solid #dde1e7; padding: 6px 8px; text-align: left; white-space: nowrap; }
th { background: #eef1f5; }
td.muted { color: #9aa3b2; }
td.fail { color: #b3261e; font-weight: 600; }
tr.geomean td { font-style: italic; background: #fafbfc; }
.charts { display: grid; grid-template-columns: repeat(auto-fit, minmax(420px, 1fr)); gap: 12px; margin-top: 12px; }
figure { margin: 0; background: #fff; border: 1px solid #dde1e7; padding: 8px; }
figure img { width: 100%; }
figcaption { display: flex; justify-content: space-between; font-size: 12px; }
.scale { margin: 8px 24px 0; }
.log { display: none; }
#scale-log:checked ~ main .linear { display: none; }
#scale-log:checked ~ main .log { display: block; }
</style>
</head>
<body>
<header>
<div>
<h1>{{.Title}}</h1>
<div class="sub">Source: <code>{{.Source}}</code> · Generated: {{.Generated.Format "2006-01-02 15:04:05 MST"}}</div>
</div>
{{- if .Files}}
<form method="get">
<label>File <select name="file">
{{- range .Files}}
<option value="{{.Name}}"{{if eq .Name $.Source}} selected{{end}}>{{.Name}} ({{.Size}} bytes)</option>
{{- end}}
</select></label>
<label><input type="checkbox" name="hide_missing" value="1"{{if .HideMissing}} checked{{end}}> hide missing</label>
<label><input type="checkbox" name="hide_fail" value="1"{{if .HideFail}} checked{{end}}> hide failed</label>
<button type="submit">Show</button>
</form>
{{- end}}
</header>
<input type="radio" name="scale" id="scale-linear" checked><label for="scale-linear" class="scale">linear</label>
<input type="radio" name="scale" id="scale-log"><label for="scale-log">log</label>
<main>
{{- if not .Tables}}
<p>No results found.</p>
{{- end}}
{{- range .Tables}}
<section>
<h2>{{.Heading}}</h2>
<table>
<thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr><td><code>{{.Case}}</code></td>{{range .Cells}}<td class="{{.Status}}">{{.Text}}</td>{{end}}</tr>
{{- end}}
{{- if gt (len .Rows) 1}}
<tr class="geomean"><td>geomean</td>{{range .GeoMean}}<td>{{.Text}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
<div class="legend">Legend: {{$.Legend}}</div>
<div class="charts">
{{- range .Charts}}
<figure>
<img class="linear" src="{{.Linear}}" alt="{{.Title}}">
<img class="log" src="{{.Log}}" alt="{{.Title}} (log)">
<figcaption><span>{{.Title}}</span><span><a href="{{.PNG}}" download="{{.PNGName}}">PNG</a> · <a href="{{.Linear}}" download="{{.SVGName}}">SVG</a></span></figcaption>
</figure>
{{- end}}
</div>
</section>
{{- end}}
</main>
</body>
</html>
`))
