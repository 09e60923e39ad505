// Package analytics derives spending summaries from a full expense list.
// Every function is pure: the same list and clock yield the same output.
package analytics

import (
	"sort"
	"time"

	"github.com/isdelr/expense-tracker-be/internal/models"
)

// PeriodKeyLayout formats the month an expense falls in.
const PeriodKeyLayout = "2006-01"

// PeriodTotal is the amount spent in one calendar month.
type PeriodTotal struct {
	Period string        `json:"period"`
	Total  models.Amount `json:"total"`
}

// CategoryTotal is the amount spent in one category.
type CategoryTotal struct {
	Category models.Category `json:"category"`
	Total    models.Amount   `json:"total"`
}

// Stats are the headline figures of an expense list.
type Stats struct {
	Total          models.Amount `json:"total"`
	ThisMonth      models.Amount `json:"thisMonth"`
	AveragePerDay  float64       `json:"averagePerDay"`
	CategoriesUsed int           `json:"categoriesUsed"`
}

// Summary bundles every derived view.
type Summary struct {
	MonthlyTrend      []PeriodTotal                    `json:"monthlyTrend"`
	CategoryBreakdown map[models.Category]models.Amount `json:"categoryBreakdown"`
	TopCategories     []CategoryTotal                  `json:"topCategories"`
	Stats             Stats                            `json:"stats"`
}

// MonthlyTrend sums amounts per calendar month, oldest month first.
func MonthlyTrend(expenses []models.Expense) []PeriodTotal {
	totals := make(map[string]models.Amount)
	for _, e := range expenses {
		totals[e.Date.Format(PeriodKeyLayout)] += e.Amount
	}

	trend := make([]PeriodTotal, 0, len(totals))
	for period, total := range totals {
		trend = append(trend, PeriodTotal{Period: period, Total: total})
	}
	// "YYYY-MM" sorts chronologically as a string.
	sort.Slice(trend, func(i, j int) bool { return trend[i].Period < trend[j].Period })
	return trend
}

// CategoryBreakdown sums amounts per category.
func CategoryBreakdown(expenses []models.Expense) map[models.Category]models.Amount {
	breakdown := make(map[models.Category]models.Amount)
	for _, e := range expenses {
		breakdown[e.Category] += e.Amount
	}
	return breakdown
}

// TopCategories ranks categories by total, largest first. Equal totals
// are ordered by category name.
func TopCategories(expenses []models.Expense) []CategoryTotal {
	breakdown := CategoryBreakdown(expenses)
	ranked := make([]CategoryTotal, 0, len(breakdown))
	for category, total := range breakdown {
		ranked = append(ranked, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Total != ranked[j].Total {
			return ranked[i].Total > ranked[j].Total
		}
		return ranked[i].Category < ranked[j].Category
	})
	return ranked
}

// ComputeStats returns the totals and the average spent per day over the
// inclusive span between the earliest and latest expense dates. ThisMonth
// covers expenses dated in now's calendar month.
func ComputeStats(expenses []models.Expense, now time.Time) Stats {
	var stats Stats
	if len(expenses) == 0 {
		return stats
	}

	categories := make(map[models.Category]struct{})
	earliest, latest := expenses[0].Date, expenses[0].Date
	for _, e := range expenses {
		stats.Total += e.Amount
		if e.Date.Year() == now.Year() && e.Date.Month() == now.Month() {
			stats.ThisMonth += e.Amount
		}
		categories[e.Category] = struct{}{}
		if e.Date.Before(earliest.Time) {
			earliest = e.Date
		}
		if e.Date.After(latest.Time) {
			latest = e.Date
		}
	}

	days := earliest.DaysUntil(latest) + 1
	if days < 1 {
		days = 1
	}
	stats.AveragePerDay = stats.Total.Float() / float64(days)
	stats.CategoriesUsed = len(categories)
	return stats
}

// Summarize computes every view in one pass over the caller's list.
func Summarize(expenses []models.Expense, now time.Time) Summary {
	return Summary{
		MonthlyTrend:      MonthlyTrend(expenses),
		CategoryBreakdown: CategoryBreakdown(expenses),
		TopCategories:     TopCategories(expenses),
		Stats:             ComputeStats(expenses, now),
	}
}
