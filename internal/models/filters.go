package models

// RankingFilter represents query parameters for top-N ranking requests
type RankingFilter struct {
	Column string `form:"column" binding:"omitempty,oneof=start_station_name date weekday"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// RollingFilter represents query parameters for rolling mean requests
type RollingFilter struct {
	Window int `form:"window" binding:"omitempty,min=1,max=365"`
}
