package models

import "time"

// ScheduleBlock is one positioned session on the weekly grid.
type ScheduleBlock struct {
	Session      Session      `json:"session"`
	VisualStatus VisualStatus `json:"visual_status"`
	Top          float64      `json:"top"`
	Height       float64      `json:"height"`
	IsOwnSession bool         `json:"is_own_session"`
	SeatsLeft    *int         `json:"seats_left,omitempty"`
}

// DayColumn groups the blocks of one visible weekday, Monday through
// Saturday. Sundays carry no classes and are dropped from the grid.
type DayColumn struct {
	Weekday time.Weekday    `json:"weekday"`
	Date    time.Time       `json:"date"`
	Blocks  []ScheduleBlock `json:"blocks"`
}

// WeekSchedule is the composed weekly grid for one student.
type WeekSchedule struct {
	WeekStart time.Time    `json:"week_start"`
	Days      [6]DayColumn `json:"days"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
