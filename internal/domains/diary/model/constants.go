package model

const (
	MaxMessageLength = 1000
	MaxCommentLength = 500

	// Feed paging
	DefaultFeedLimit = 50
	MaxFeedLimit     = 100

	TrendingLimit = 10
)
