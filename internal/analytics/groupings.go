package analytics

import (
	"sort"
	"time"

	"github.com/yourusername/whatif-futures/internal/models"
)

// HourlyPerformance aggregates trades by the hour of entry
type HourlyPerformance struct {
	Hour      int     `json:"hour"`
	AvgPnL    float64 `json:"avg_pnl"`
	TotalPnL  float64 `json:"total_pnl"`
	NumTrades int     `json:"num_trades"`
	WinRate   float64 `json:"win_rate"`
}

// DailyPnL is one cell of the weekly pnl pivot, keyed by ISO week and weekday
type DailyPnL struct {
	Year    int     `json:"year"`
	Week    int     `json:"week"`
	Weekday string  `json:"weekday"`
	Date    string  `json:"date"`
	PnL     float64 `json:"pnl"`
}

// MonthlyPnL aggregates pnl by calendar month of exit
type MonthlyPnL struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	MonthName string  `json:"month_name"`
	PnL       float64 `json:"returns"`
}

// GetTimeOfDayPerformance groups trades by hour of entry time
func GetTimeOfDayPerformance(trades []*models.Trade) []HourlyPerformance {
	if len(trades) == 0 {
		return nil
	}
	type bucket struct {
		pnl   float64
		count int
		wins  int
	}
	buckets := make(map[int]*bucket)
	for _, trade := range trades {
		hour := trade.EntryTime.Hour()
		b, ok := buckets[hour]
		if !ok {
			b = &bucket{}
			buckets[hour] = b
		}
		b.pnl += trade.PnL
		b.count++
		if trade.Outcome == models.OutcomeWin {
			b.wins++
		}
	}

	result := make([]HourlyPerformance, 0, len(buckets))
	for hour, b := range buckets {
		result = append(result, HourlyPerformance{
			Hour:      hour,
			AvgPnL:    b.pnl / float64(b.count),
			TotalPnL:  b.pnl,
			NumTrades: b.count,
			WinRate:   float64(b.wins) / float64(b.count) * 100,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Hour < result[j].Hour })
	return result
}

// GetWeeklyPnL sums pnl per exit date, keyed by ISO year/week and weekday name
func GetWeeklyPnL(trades []*models.Trade) []DailyPnL {
	if len(trades) == 0 {
		return nil
	}
	type key struct {
		year, week int
		weekday    string
		date       string
	}
	sums := make(map[key]float64)
	for _, trade := range trades {
		isoYear, isoWeek := trade.ExitTime.ISOWeek()
		k := key{
			year:    isoYear,
			week:    isoWeek,
			weekday: trade.ExitTime.Weekday().String(),
			date:    trade.ExitTime.Format("2006-01-02"),
		}
		sums[k] += trade.PnL
	}

	result := make([]DailyPnL, 0, len(sums))
	for k, pnl := range sums {
		result = append(result, DailyPnL{Year: k.year, Week: k.week, Weekday: k.weekday, Date: k.date, PnL: pnl})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result
}

// GetMonthlyReturns sums pnl by calendar year and month of exit time
func GetMonthlyReturns(trades []*models.Trade) []MonthlyPnL {
	if len(trades) == 0 {
		return nil
	}
	type key struct {
		year  int
		month time.Month
	}
	sums := make(map[key]float64)
	for _, trade := range trades {
		sums[key{trade.ExitTime.Year(), trade.ExitTime.Month()}] += trade.PnL
	}

	result := make([]MonthlyPnL, 0, len(sums))
	for k, pnl := range sums {
		result = append(result, MonthlyPnL{
			Year:      k.year,
			Month:     int(k.month),
			MonthName: k.month.String()[:3],
			PnL:       pnl,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].Month < result[j].Month
	})
	return result
}
