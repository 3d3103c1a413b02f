package models

// ToolResponse is what the voice agent's tool layer receives; Data is spoken text.
type ToolResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
}

type LookupMetadata struct {
	Outcome      Outcome `json:"outcome"`
	CacheHit     bool    `json:"cache_hit"`
	TotalResults int     `json:"total_results"`
	SearchTimeMs int64   `json:"search_time_ms"`
}

type FlightsResponse struct {
	Query    RouteQuery        `json:"query"`
	Metadata LookupMetadata    `json:"metadata"`
	Flights  []FlightCandidate `json:"flights"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
