// Package templates renders the dashboard page. Dashboard is generated from
// dashboard.templ with `templ generate`.
package templates

import "strconv"

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// DashboardView holds the initial slider positions and report settings.
type DashboardView struct {
	Title          string
	Demand         float64
	Inflation      int
	ChurnThreshold int
	ForecastWeeks  int
	Script         string
}

func DefaultDashboardView() DashboardView {
	return DashboardView{
		Title:          "Hardware Store Scenario Simulator",
		Demand:         1.0,
		Inflation:      0,
		ChurnThreshold: 90,
		ForecastWeeks:  4,
	}
}

func scriptSrc(view DashboardView) string {
	if view.Script == "" {
		return datastarScript
	}
	return view.Script
}

func formatDemand(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64)
}
