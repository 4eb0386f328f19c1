package cache

type CacheConfig struct {
	// ParseEntries bounds the number of parsed trees kept in memory.
	ParseEntries int `yaml:"parse_entries"`
}

func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{ParseEntries: 512}
}

type CacheMetrics struct {
	Hits          int64   `json:"hits"`
	Misses        int64   `json:"misses"`
	Invalidations int64   `json:"invalidations"`
	TotalEntries  int     `json:"total_entries"`
	HitRate       float64 `json:"hit_rate"`
}

func (m *CacheMetrics) CalculateHitRate() {
	total := m.Hits + m.Misses
	if total > 0 {
		m.HitRate = float64(m.Hits) / float64(total) * 100
	} else {
		m.HitRate = 0
	}
}
