package report

import (
	"sort"
	"strconv"
	"strings"

	internal "github.com/thanhhle/salesops-management/internal"
	"github.com/thanhhle/salesops-management/internal/plan"
)

// The dashboard charts track the five unit-count products. VAS, CNTT
// revenue and other services are money or bundle figures and are shown
// separately.
var unitProducts = []string{"sim", "fiber", "mytv", "mesh_camera", "cntt"}

type WeeklySummaryRow struct {
	WeekNumber string         `json:"week_number"`
	Targets    map[string]int `json:"targets"`
	Results    map[string]int `json:"results"`
	PlanCount  int            `json:"plan_count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type EmployeeScore struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	TargetTotal  int     `json:"target_total"`
	ResultTotal  int     `json:"result_total"`
	Ratio        float64 `json:"ratio"`
}

type Ranking struct {
	Top    []EmployeeScore `json:"top"`
	Bottom []EmployeeScore `json:"bottom"`
}

// Trend granularities.
const (
	TrendByDay   = "day"
	TrendByMonth = "month"
)

type TrendPoint struct {
	Period string `json:"period"`
	Value  int    `json:"value"`
}

func unitFigures(f plan.ProductFigures) map[string]int {
	return map[string]int{
		"sim":         f.Sim,
		"fiber":       f.Fiber,
		"mytv":        f.MyTV,
		"mesh_camera": f.MeshCamera,
		"cntt":        f.CNTT,
	}
}

func sumUnits(f plan.ProductFigures) int {
	total := 0
	for _, v := range unitFigures(f) {
		total += v
	}
	return total
}

// weekOrdinal extracts the numeric part of a week label so "Tuần 9"
// sorts before "Tuần 35" regardless of label formatting.
func weekOrdinal(weekNumber string) int {
	fields := strings.Fields(weekNumber)
	for i := len(fields) - 1; i >= 0; i-- {
		if n, err := strconv.Atoi(fields[i]); err == nil {
			return n
		}
	}
	return 0
}

// WeeklySummary aggregates targets and results per week. Targets count
// every plan; results only count completed plans, since pending and
// rejected plans never produced figures. At most the latest maxWeeks
// weeks are returned, oldest first.
func WeeklySummary(plans []plan.Plan, maxWeeks int) []WeeklySummaryRow {
	byWeek := make(map[string]*WeeklySummaryRow)

	for _, p := range plans {
		row, ok := byWeek[p.WeekNumber]
		if !ok {
			row = &WeeklySummaryRow{
				WeekNumber: p.WeekNumber,
				Targets:    make(map[string]int),
				Results:    make(map[string]int),
			}
			byWeek[p.WeekNumber] = row
		}
		row.PlanCount++
		for product, v := range unitFigures(p.Targets) {
			row.Targets[product] += v
		}
		if p.Status == plan.StatusCompleted {
			for product, v := range unitFigures(p.Results) {
				row.Results[product] += v
			}
		} else {
			for _, product := range unitProducts {
				row.Results[product] += 0
			}
		}
	}

	rows := make([]WeeklySummaryRow, 0, len(byWeek))
	for _, row := range byWeek {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return weekOrdinal(rows[i].WeekNumber) < weekOrdinal(rows[j].WeekNumber)
	})

	if maxWeeks > 0 && len(rows) > maxWeeks {
		rows = rows[len(rows)-maxWeeks:]
	}
	return rows
}

// StatusDistribution counts plans across the pending/approved/completed
// proportions the dashboard charts. Rejected plans and empty slices are
// left out, in a stable order.
func StatusDistribution(plans []plan.Plan) []StatusCount {
	counts := make(map[string]int)
	for _, p := range plans {
		counts[p.Status]++
	}

	out := make([]StatusCount, 0, 3)
	for _, status := range []string{plan.StatusPending, plan.StatusApproved, plan.StatusCompleted} {
		if counts[status] > 0 {
			out = append(out, StatusCount{Status: status, Count: counts[status]})
		}
	}
	return out
}

// EmployeeRanking scores employees by completed unit results over total
// unit targets, as a percentage. Employees whose plans carry no targets
// at all are not ranked into the bottom list, so a new hire with no
// quota does not show up as a zero performer. Input order does not
// affect the outcome; ties break by employee id for stability.
func EmployeeRanking(plans []plan.Plan, topN int) Ranking {
	type acc struct {
		name    string
		targets int
		results int
	}
	byEmployee := make(map[string]*acc)

	for _, p := range plans {
		a, ok := byEmployee[p.EmployeeID]
		if !ok {
			a = &acc{name: p.EmployeeName}
			byEmployee[p.EmployeeID] = a
		}
		a.targets += sumUnits(p.Targets)
		if p.Status == plan.StatusCompleted {
			a.results += sumUnits(p.Results)
		}
	}

	scores := make([]EmployeeScore, 0, len(byEmployee))
	for id, a := range byEmployee {
		score := EmployeeScore{
			EmployeeID:   id,
			EmployeeName: a.name,
			TargetTotal:  a.targets,
			ResultTotal:  a.results,
		}
		if a.targets > 0 {
			score.Ratio = float64(a.results) / float64(a.targets) * 100
		}
		scores = append(scores, score)
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Ratio != scores[j].Ratio {
			return scores[i].Ratio > scores[j].Ratio
		}
		return scores[i].EmployeeID < scores[j].EmployeeID
	})

	if topN <= 0 {
		topN = 3
	}

	top := scores
	if len(top) > topN {
		top = top[:topN]
	}

	ranked := make([]EmployeeScore, 0, len(scores))
	for _, s := range scores {
		if s.TargetTotal > 0 {
			ranked = append(ranked, s)
		}
	}
	bottom := make([]EmployeeScore, 0, topN)
	for i := len(ranked) - 1; i >= 0 && len(bottom) < topN; i-- {
		bottom = append(bottom, ranked[i])
	}

	return Ranking{Top: append([]EmployeeScore(nil), top...), Bottom: bottom}
}

// productFigure resolves one tracked product or service key to its
// reported figure. RevenueCNTT is folded to int for charting.
func productFigure(f plan.ProductFigures, product string) (int, bool) {
	switch product {
	case "sim":
		return f.Sim, true
	case "vas":
		return f.Vas, true
	case "fiber":
		return f.Fiber, true
	case "mytv":
		return f.MyTV, true
	case "mesh_camera":
		return f.MeshCamera, true
	case "cntt":
		return f.CNTT, true
	case "revenue_cntt":
		return int(f.RevenueCNTT), true
	case "other_services":
		return f.OtherServices, true
	}
	return 0, false
}

// ProductTrend buckets completed results for one selected product, by
// day or by month, oldest first.
func ProductTrend(plans []plan.Plan, product, granularity string) ([]TrendPoint, *internal.AppError) {
	if _, ok := productFigure(plan.ProductFigures{}, product); !ok {
		return nil, internal.NewValidationError("unknown product key", internal.ErrCodeValidationFailed)
	}
	if granularity != TrendByDay && granularity != TrendByMonth {
		return nil, internal.NewValidationError("granularity must be day or month", internal.ErrCodeValidationFailed)
	}

	byPeriod := make(map[string]int)
	for _, p := range plans {
		if p.Status != plan.StatusCompleted {
			continue
		}
		period := p.Date
		if granularity == TrendByMonth && len(period) >= 7 {
			period = period[:7]
		}
		v, _ := productFigure(p.Results, product)
		byPeriod[period] += v
	}

	points := make([]TrendPoint, 0, len(byPeriod))
	for period, value := range byPeriod {
		points = append(points, TrendPoint{Period: period, Value: value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Period < points[j].Period })
	return points, nil
}
