package instagram

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// MetricsFor returns the insight metrics a media object supports.
// Reels expose watch time, plain videos only views, and images and
// carousels neither.
func MetricsFor(m Media) []string {
	metrics := []string{MetricReach, MetricLikes, MetricComments, MetricSaved, MetricShares}
	switch {
	case m.IsReel():
		return append(metrics, MetricReelsTotalTime, MetricReelsAvgTime, MetricViews)
	case m.IsVideo():
		return append(metrics, MetricViews)
	default:
		return metrics
	}
}

// parseInsights reads data[].name and data[].values[0].value. Newer API
// versions report some metrics as total_value.value instead, which is used
// as a fallback. Non-numeric values are skipped.
func parseInsights(body []byte) (InsightSet, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("insights response is not valid JSON")
	}

	set := make(InsightSet)
	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		return set, nil
	}
	if !data.IsArray() {
		return nil, fmt.Errorf("insights data is %s, not an array", data.Type)
	}

	data.ForEach(func(_, metric gjson.Result) bool {
		name := metric.Get("name").String()
		if name == "" {
			return true
		}

		value := metric.Get("values.0.value")
		if !value.Exists() {
			value = metric.Get("total_value.value")
		}
		if value.Type == gjson.Number {
			set[name] = value.Float()
		}
		return true
	})

	return set, nil
}
