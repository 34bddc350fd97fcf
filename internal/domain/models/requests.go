package models

// Requests for dashboard HTTP endpoints. Defined in domain for consistency
// and reuse.

type LeaderboardRequest struct {
	Period  string `query:"period" json:"period" default:"30d" validate:"oneof=7d 30d 90d 1y all"`
	Chamber string `query:"chamber" json:"chamber" validate:"omitempty,oneof=senate house any"`
	Limit   int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
	Sort    string `query:"sort" json:"sort" validate:"omitempty,oneof=trades buys sells avg_size"`
	Dir     string `query:"dir" json:"dir" default:"desc" validate:"oneof=asc desc"`
}

func (r LeaderboardRequest) Filter() FilterState {
	return FilterState{Period: Period(r.Period), Chamber: Chamber(r.Chamber), Limit: r.Limit}
}

type LeaderboardChartRequest struct {
	Period  string `query:"period" json:"period" default:"30d" validate:"oneof=7d 30d 90d 1y all"`
	Chamber string `query:"chamber" json:"chamber" validate:"omitempty,oneof=senate house any"`
	Limit   int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
	Top     int    `query:"top" json:"top" default:"10" validate:"gte=1,lte=100"`
}

// Filter ignores Top: the slice size is a view parameter, so every chart
// width reuses the same cached payload as the table.
func (r LeaderboardChartRequest) Filter() FilterState {
	return FilterState{Period: Period(r.Period), Chamber: Chamber(r.Chamber), Limit: r.Limit}
}

type SectorChartRequest struct {
	Period string `query:"period" json:"period" default:"30d" validate:"oneof=7d 30d 90d 1y all"`
	Top    int    `query:"top" json:"top" default:"10" validate:"gte=1,lte=100"`
}

func (r SectorChartRequest) Filter() FilterState {
	return FilterState{Period: Period(r.Period)}
}

type TradesRequest struct {
	Period  string `query:"period" json:"period" default:"30d" validate:"oneof=7d 30d 90d 1y all"`
	Chamber string `query:"chamber" json:"chamber" validate:"omitempty,oneof=senate house any"`
	Limit   int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
	Cursor  string `query:"cursor" json:"cursor" validate:"omitempty,max=128"`
}

func (r TradesRequest) Filter() FilterState {
	return FilterState{Period: Period(r.Period), Chamber: Chamber(r.Chamber), Limit: r.Limit, Cursor: r.Cursor}
}

type SummaryRequest struct {
	Period string `query:"period" json:"period" default:"30d" validate:"oneof=7d 30d 90d 1y all"`
	Limit  int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

// Filter matches the unrestricted leaderboard filter, so the summary widget
// piggybacks on the table's cache entry instead of fetching again.
func (r SummaryRequest) Filter() FilterState {
	return FilterState{Period: Period(r.Period), Limit: r.Limit}
}
