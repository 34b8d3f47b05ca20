package persistence

import (
	"github.com/helixml/citetrack/domain/feed"
	"github.com/helixml/citetrack/internal/database"
)

// FeedStore implements feed.FeedStore using GORM.
type FeedStore struct {
	database.Repository[feed.Feed, FeedModel]
}

// NewFeedStore creates a new FeedStore.
func NewFeedStore(db database.Database) FeedStore {
	return FeedStore{
		Repository: database.NewRepository[feed.Feed, FeedModel](db, FeedMapper{}, "feed"),
	}
}

// PostStore implements feed.PostStore using GORM.
type PostStore struct {
	database.Repository[feed.Post, PostModel]
}

// NewPostStore creates a new PostStore.
func NewPostStore(db database.Database) PostStore {
	return PostStore{
		Repository: database.NewRepository[feed.Post, PostModel](db, PostMapper{}, "external post"),
	}
}
