package analytics

import "fmt"

// EngagementRate returns (likes+comments+saved+shares)/reach as a
// percentage. ok is false when reach is not positive.
func EngagementRate(likes, comments, saved, shares, reach float64) (rate float64, ok bool) {
	if reach <= 0 {
		return 0, false
	}
	return (likes + comments + saved + shares) / reach * 100, true
}

// Completion estimates a reel's duration as totalWatch/views and its
// completion rate as avgWatch over that estimate. ok is false unless all
// three inputs are positive.
func Completion(views, avgWatch, totalWatch float64) (estimatedDuration, rate float64, ok bool) {
	if views <= 0 || avgWatch <= 0 || totalWatch <= 0 {
		return 0, 0, false
	}
	estimatedDuration = totalWatch / views
	return estimatedDuration, avgWatch / estimatedDuration * 100, true
}

// FormatDuration renders seconds as 12.3s, 4.5m or 1.2h
func FormatDuration(seconds float64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%.1fs", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%.1fm", seconds/60)
	default:
		return fmt.Sprintf("%.1fh", seconds/3600)
	}
}
