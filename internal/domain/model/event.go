package model

import "time"

// PageEvent is one recorded page view, the unit the analytics dashboard
// aggregates over.
type PageEvent struct {
	ID         string
	SessionID  string
	Path       string
	Referrer   string
	OccurredAt time.Time
}

// SiteStats is the aggregate snapshot served to the admin dashboard.
type SiteStats struct {
	TotalViews      int64
	ViewsByDay      map[string]int64 // "2006-01-02" -> views
	TopPaths        map[string]int64
	ChatSessions    int64
	ContactRequests int64 // successfully dispatched notifications
}
