package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	encodeStatuses := []string{"success", "invalid", "unreadable", "encode_error", "canceled", "error"}
	for _, format := range []string{"mp4", "webm", "mkv", "av1"} {
		for _, status := range encodeStatuses {
			EncodeJobsTotal.WithLabelValues(format, status)
		}
	}

	deliveryModes := []string{"inline", "attachment", "range", "head"}
	deliveryStatuses := []string{"ok", "not_found", "unsatisfiable", "empty", "error"}
	for _, mode := range deliveryModes {
		for _, status := range deliveryStatuses {
			DeliveryRequestsTotal.WithLabelValues(mode, status)
		}
	}
}
