package errorx

type Code int

const (
	// Common codes
	BadRequest      Code = 100001
	NotFound        Code = 100003
	Unauthenticated Code = 100004
	AlreadyExists   Code = 100005
	Unavailable     Code = 100007
	TooManyRequests Code = 100008

	// Token codes
	TokenExpired Code = 200001
)
