package types

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidOption = goerr.New("invalid option")
	ErrInvalidConfig = goerr.New("invalid configuration")

	// ErrRepoNotAccessible indicates the provider answered 403 or 404 for a
	// hook management call. This is not a failure: the repository is routed
	// to poll fallback.
	ErrRepoNotAccessible = goerr.New("repository not accessible")

	// ErrRateLimited is returned by the delivery client when the messaging
	// provider asks to back off.
	ErrRateLimited = goerr.New("rate limited by provider")

	ErrInvalidEvent = goerr.New("invalid inbound event")
)
