// Package report renders the analysis output: per-variant quantile tables
// and diagnostic plots of the fitted incubation distributions.
package report

import (
	"fmt"
	"io"
	"math"
	"text/template"

	"github.com/lejarx/ncov-incubation/model"
)

const tablesTemplate = `{{- range . -}}
## {{.Dataset}} / {{.Family}} ({{.Method}}, {{.Level}} interval)

percentile   estimate      lower      upper
{{range .Rows}}{{.}}
{{end}}
{{end -}}`

type tableView struct {
	Dataset string
	Family  string
	Method  model.IntervalMethod
	Level   string
	Rows    []string
}

// RenderTables writes the quantile tables for all reports to w. Bounds
// that could not be derived (unreliable bootstrap) render as "undefined".
func RenderTables(w io.Writer, reports []*model.QuantileReport) error {
	views := make([]tableView, 0, len(reports))
	for _, r := range reports {
		view := tableView{
			Dataset: r.Dataset,
			Family:  r.Family,
			Method:  r.Method,
			Level:   fmt.Sprintf("%.0f%%", r.Level*100),
		}
		for _, q := range r.Quantiles {
			view.Rows = append(view.Rows, fmt.Sprintf("%9.0f%%   %8s   %8s   %8s",
				q.Probability*100, cell(q.Value), cell(q.Lower), cell(q.Upper)))
		}
		views = append(views, view)
	}

	tmpl := template.Must(template.New("tables").Parse(tablesTemplate))
	return tmpl.Execute(w, views)
}

func cell(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "undefined"
	}
	return fmt.Sprintf("%.2f", v)
}
