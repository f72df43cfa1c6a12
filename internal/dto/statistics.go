package dto

// MonthBucket is one emitted month in the rolling 12-month statistics.
// Months with no positively rated meetings are omitted entirely, so
// Rating is always defined here.
type MonthBucket struct {
	Name   string  `json:"name"`
	Year   int     `json:"year"`
	Rating float64 `json:"rating"`
}

// MonthlyStatisticsResponse lists month buckets, current month first.
type MonthlyStatisticsResponse struct {
	Months []MonthBucket `json:"months"`
}

// WeekBucket is one calendar week window within a requested month. Weeks
// are always enumerated; a week with no rated meetings carries a null
// rating instead of being dropped.
type WeekBucket struct {
	WeekNumber int      `json:"week_number"`
	Rating     *float64 `json:"rating"`
}

// WeeklyStatisticsResponse lists the week windows of one month in order.
type WeeklyStatisticsResponse struct {
	Weeks []WeekBucket `json:"weeks"`
}
