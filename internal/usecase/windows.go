package usecase

import (
	"time"

	"BarPull/internal/domain/models"
	drepo "BarPull/internal/domain/repository"
)

// plannerPointBudget caps the expected point total across planned
// windows. It sits at twice the series cap because the expected-density
// estimate undercounts weekends and holidays; the merge step trims the
// real result back down to models.SeriesCap.
const plannerPointBudget = 2 * models.SeriesCap

// PlanWindows splits [start, end] into provider-sized windows, working
// backward from end, newest first. Emission stops once the cursor passes
// start or the expected point total reaches the budget. The last window
// may extend earlier than start; the merge step trims the overshoot.
func PlanWindows(spec drepo.TimeframeSpec, assetType models.AssetType, start, end time.Time) []models.Window {
	perWindow := spec.ExpectedPoints(assetType)

	var windows []models.Window
	cursor := end
	points := 0
	for !cursor.Before(start) && points < plannerPointBudget {
		windowStart := cursor.AddDate(0, 0, -(spec.MaxRangeDays - 1))
		windows = append(windows, models.Window{Start: windowStart, End: cursor})
		cursor = windowStart.AddDate(0, 0, -1)
		points += perWindow
	}
	return windows
}

// fitsSingleWindow reports whether [start, end] can be served by one
// provider request for the given spec.
func fitsSingleWindow(spec drepo.TimeframeSpec, start, end time.Time) bool {
	limit := start.AddDate(0, 0, spec.MaxRangeDays-1)
	return !end.After(limit)
}
