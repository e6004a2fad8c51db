package domain

// View active page selector: the dashboard, the settings page or a watchlist id.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewSettings  View = "settings"
)

// String returns the string representation.
func (v View) String() string {
	return string(v)
}

// IsDashboard reports whether the view is the top movers dashboard.
func (v View) IsDashboard() bool {
	return v == ViewDashboard
}

// IsSettings reports whether the view is the settings page.
func (v View) IsSettings() bool {
	return v == ViewSettings
}

// WatchlistID returns the watchlist id the view points at, if any.
func (v View) WatchlistID() (string, bool) {
	if v == "" || v == ViewDashboard || v == ViewSettings {
		return "", false
	}
	return string(v), true
}
