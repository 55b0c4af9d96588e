package tokenstore

// Fixed storage keys, shared by every backend
const (
	KeyAccessToken  = "token"
	KeyRefreshToken = "refreshToken"
)
