package handler

type createReportRequest struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
}

// updateReportRequest is a patch: only fields present in the body are applied.
type updateReportRequest struct {
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
}

type rateLimitedResponse struct {
	Error            string `json:"error"`
	Message          string `json:"message"`
	SecondsRemaining int    `json:"secondsRemaining"`
	RetryAfter       int    `json:"retryAfter"`
}

type reportCountResponse struct {
	Count int64 `json:"count"`
}
