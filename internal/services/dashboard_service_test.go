package services

import "testing"

func TestNormalizeSnapshotParams(t *testing.T) {
	tests := []struct {
		name       string
		months     int
		window     int
		wantMonths int
		wantWindow int
	}{
		{"defaults", 0, 0, 12, 7},
		{"negative falls back", -3, -1, 12, 7},
		{"in range passes through", 6, 14, 6, 14},
		{"months capped", 100000, 7, 120, 7},
		{"window capped", 12, 100000, 12, 365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			months, window := normalizeSnapshotParams(tt.months, tt.window)
			if months != tt.wantMonths || window != tt.wantWindow {
				t.Errorf("normalizeSnapshotParams(%d, %d) = (%d, %d); want (%d, %d)",
					tt.months, tt.window, months, window, tt.wantMonths, tt.wantWindow)
			}
		})
	}
}

func TestDashboardCacheKey(t *testing.T) {
	if got := dashboardCacheKey(12, 7); got != "dashboard:snapshot:12:7" {
		t.Errorf("dashboardCacheKey(12, 7) = %q; want dashboard:snapshot:12:7", got)
	}
}
