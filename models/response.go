package models

// Response is the envelope used by mutating endpoints.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SyncSettings is the refetch cadence a client should follow.
type SyncSettings struct {
	MinFetchIntervalSeconds   int64 `json:"minFetchIntervalSeconds"`
	RefreshIntervalSeconds    int64 `json:"refreshIntervalSeconds"`
	UnreadPollIntervalSeconds int64 `json:"unreadPollIntervalSeconds"`
	PageSize                  int   `json:"pageSize"`
}

// UnreadCount is the body of the unread-count endpoints.
type UnreadCount struct {
	Count int64 `json:"count"`
}
