package dto

type DeployCacheRequest struct {
	Version string `json:"version" validate:"required,max=64"`
}

type OfflineStatusResponse struct {
	ActiveVersion string   `json:"active_version,omitempty"`
	State         string   `json:"state"`
	Caches        []string `json:"caches"`
	CachedEntries int      `json:"cached_entries"`
}

type SyncRequest struct {
	Tag string `json:"tag" validate:"required"`
}

type PushRequest struct {
	Payload string `json:"payload"`
}
