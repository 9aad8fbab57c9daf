// Package types contains common wire types used across the application
package types

import (
	"github.com/okian/sked/internal/domain/model"
)

// DailyView is the three-bucket day view returned by the agenda API.
type DailyView struct {
	Today    []model.Event `json:"today"`
	Tomorrow []model.Event `json:"tomorrow"`
	Upcoming []model.Event `json:"upcoming"`
}

// WeekGroup is one labeled week of the weekly view.
type WeekGroup struct {
	Label  string        `json:"label"`
	Start  model.Date    `json:"start"`
	End    model.Date    `json:"end"`
	Events []model.Event `json:"events"`
}

// MonthGroup is one labeled month of the monthly view.
type MonthGroup struct {
	Label  string        `json:"label"`
	Year   int           `json:"year"`
	Month  int           `json:"month"`
	Events []model.Event `json:"events"`
}

// TaskRequest is the payload for creating a personal task. Date defaults to
// today when omitted; TimeRange is free display text.
type TaskRequest struct {
	Title     string `json:"title"`
	Date      string `json:"date,omitempty"`
	TimeRange string `json:"time_range,omitempty"`
}

// SyncResult summarizes one feed refresh pass.
type SyncResult struct {
	Fetched   int    `json:"fetched"`
	Admitted  int    `json:"admitted"`
	Dropped   int    `json:"dropped"`
	Feeds     int    `json:"feeds"`
	Failed    int    `json:"failed"`
	Duration  string `json:"duration"`
	SyncedAt  string `json:"synced_at"`
	LastError string `json:"last_error,omitempty"`
}

// Stats is the service statistics snapshot exposed over HTTP.
type Stats struct {
	OfficialEvents int    `json:"official_events"`
	PersonalTasks  int    `json:"personal_tasks"`
	LastSyncAt     string `json:"last_sync_at,omitempty"`
	LastSyncError  string `json:"last_sync_error,omitempty"`
	Uptime         string `json:"uptime"`
}
