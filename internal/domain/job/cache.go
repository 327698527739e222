package job

import "context"

// FeedCache caches the public discovery feed per filter. Implementations
// must tolerate being called with a canceled context; a miss is never an
// error.
type FeedCache interface {
	Get(ctx context.Context, filter FeedFilter) ([]JobListing, bool)
	Set(ctx context.Context, filter FeedFilter, listings []JobListing)
	Invalidate(ctx context.Context)
}

type noopFeedCache struct{}

func (noopFeedCache) Get(context.Context, FeedFilter) ([]JobListing, bool) { return nil, false }

func (noopFeedCache) Set(context.Context, FeedFilter, []JobListing) {}

func (noopFeedCache) Invalidate(context.Context) {}
