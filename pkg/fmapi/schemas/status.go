package schemas

// StatusResponse reports the liveness flag of each store
type StatusResponse struct {
	Redis bool `json:"redis" doc:"Key-value store is alive"`
	DB    bool `json:"db" doc:"Document store is alive"`
}

// StatsResponse reports collection sizes. Zero also means "unknown".
type StatsResponse struct {
	Users int64 `json:"users" doc:"Number of users, 0 when the document store is unavailable"`
	Files int64 `json:"files" doc:"Number of files, 0 when the document store is unavailable"`
}

// HealthResponse summarizes both stores in one word.
type HealthResponse struct {
	Status string `json:"status" enum:"ok,degraded" doc:"ok when both stores are alive, degraded otherwise"`
}
