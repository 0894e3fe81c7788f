package constants

import "time"

const (
	RecommendationHistoryCachePrefix = "recommendation_history" // by userID (CacheBuilder adds colon)
	DatasetListCachePrefix           = "user_datasets"          // by userID
	HistoryCacheExpiry               = 10 * time.Minute

	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)
