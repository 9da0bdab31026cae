package constants

import "time"

var PaginationConfig = struct {
	PageSize int
}{
	PageSize: 50,
}

var ConstructorConfig = struct {
	BaseURL       string
	ClientTag     string
	UploadTimeout time.Duration
}{
	BaseURL:       "https://ac.cnstrc.com",
	ClientTag:     "contentful-index-app/1.0",
	UploadTimeout: 20 * time.Second,
}

var RetryConfig = struct {
	MaxAttempts int
	BackoffBase time.Duration
}{
	MaxAttempts: 3,
	BackoffBase: 300 * time.Millisecond, // delay = base * attempt^2
}

var TaskPollConfig = struct {
	Interval time.Duration
}{
	Interval: 3 * time.Second,
}

var MapperConfig = struct {
	MaxDescription int
}{
	MaxDescription: 400,
}

var ContentfulConfig = struct {
	GraphQLTimeout time.Duration
	LocaleEN       string
	LocaleFR       string
}{
	GraphQLTimeout: 15 * time.Second,
	LocaleEN:       "en-US",
	LocaleFR:       "fr",
}

var ServerConfig = struct {
	ShutdownTimeout time.Duration
	RunCacheTTL     time.Duration
}{
	ShutdownTimeout: 10 * time.Second,
	RunCacheTTL:     24 * time.Hour,
}
