package service

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/helixml/citetrack/domain/brand"
	"github.com/helixml/citetrack/domain/competitor"
	"github.com/helixml/citetrack/domain/feed"
	"github.com/helixml/citetrack/domain/repository"
	"github.com/helixml/citetrack/domain/workflow"
	"github.com/helixml/citetrack/internal/domain"
)

func validateAddFeed(f Fields) error {
	raw, err := f.Required("url")
	if err != nil {
		return err
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.Validation("url must be an absolute http or https URL")
	}
	return nil
}

// addCompetitor registers a competitor. A deactivated competitor with the
// same name is reactivated instead of duplicated.
func (d *Dispatcher) addCompetitor(ctx context.Context, b brand.Brand, f Fields) (ActionResult, error) {
	name := f.String("name")
	existing, err := d.stores.Competitors.Find(ctx, repository.WithBrandID(b.ID()))
	if err != nil {
		return ActionResult{}, domain.Upstream("load competitors", err)
	}
	for _, c := range existing {
		if !strings.EqualFold(c.Name(), name) {
			continue
		}
		if c.IsActive() {
			return ActionResult{}, domain.Conflict("competitor %q already tracked", c.Name())
		}
		saved, err := d.stores.Competitors.Save(ctx, c.Activate())
		if err != nil {
			return ActionResult{}, domain.Upstream("save competitor", err)
		}
		return result("competitor reactivated", "competitor_id", saved.ID()), nil
	}

	c, err := d.stores.Competitors.Save(ctx, competitor.NewCompetitor(b.ID(), name, f.String("domain")))
	if err != nil {
		return ActionResult{}, domain.Upstream("save competitor", err)
	}
	return result("competitor added", "competitor_id", c.ID()), nil
}

// removeCompetitor deactivates rather than deletes, so history keeps its
// attribution.
func (d *Dispatcher) removeCompetitor(ctx context.Context, b brand.Brand, f Fields) (ActionResult, error) {
	id, _ := f.UUID("competitor_id")
	c, err := d.stores.Competitors.FindOne(ctx, repository.WithID(id), repository.WithBrandID(b.ID()))
	if err != nil {
		return ActionResult{}, storeError("competitor", err)
	}
	if _, err := d.stores.Competitors.Save(ctx, c.Deactivate()); err != nil {
		return ActionResult{}, domain.Upstream("save competitor", err)
	}
	return result("competitor removed", "competitor_id", c.ID()), nil
}

// addFeed inserts the feed and queues its first sync together.
func (d *Dispatcher) addFeed(ctx context.Context, b brand.Brand, f Fields) (ActionResult, error) {
	raw := f.String("url")
	existing, err := d.stores.Feeds.Find(ctx, repository.WithBrandID(b.ID()))
	if err != nil {
		return ActionResult{}, domain.Upstream("load feeds", err)
	}
	for _, fd := range existing {
		if feed.SameURL(fd.URL(), raw) {
			return ActionResult{}, domain.Conflict("feed already added")
		}
	}

	fd := feed.NewFeed(b.ID(), raw)
	err = d.uow.InTransaction(ctx, func(ctx context.Context) error {
		if _, err := d.stores.Feeds.Save(ctx, fd); err != nil {
			return domain.Upstream("save feed", err)
		}
		return d.emit(ctx, workflow.NameFeedSync, map[string]any{"brand_id": b.ID(), "feed_id": fd.ID()})
	})
	if err != nil {
		return ActionResult{}, err
	}
	return result("feed added", "feed_id", fd.ID()), nil
}

func (d *Dispatcher) removeFeed(ctx context.Context, b brand.Brand, f Fields) (ActionResult, error) {
	id, _ := f.UUID("feed_id")
	fd, err := d.stores.Feeds.FindOne(ctx, repository.WithID(id), repository.WithBrandID(b.ID()))
	if err != nil {
		return ActionResult{}, storeError("feed", err)
	}
	if err := d.stores.Feeds.Delete(ctx, fd); err != nil {
		return ActionResult{}, domain.Upstream("delete feed", err)
	}
	return result("feed removed", "feed_id", fd.ID()), nil
}

// resyncPosts queues a sync for every synced post. A failed post is logged
// and counted; the rest still run.
func (d *Dispatcher) resyncPosts(ctx context.Context, b brand.Brand, _ Fields) (ActionResult, error) {
	posts, err := d.stores.Posts.Find(ctx, repository.WithBrandID(b.ID()), feed.WithSyncStatus(feed.SyncSynced))
	if err != nil {
		return ActionResult{}, domain.Upstream("load posts", err)
	}

	updated, failed := 0, 0
	for _, p := range posts {
		err := d.uow.InTransaction(ctx, func(ctx context.Context) error {
			if _, err := d.stores.Posts.Save(ctx, p.WithStatus(feed.SyncPending)); err != nil {
				return domain.Upstream("save post", err)
			}
			return d.emit(ctx, workflow.NamePostSync, map[string]any{"brand_id": b.ID(), "post_id": p.ID()})
		})
		if err != nil {
			failed++
			d.logger.Warn("post resync failed",
				slog.String("brand_id", b.ID()),
				slog.String("post_id", p.ID()),
				slog.String("error", err.Error()),
			)
			continue
		}
		updated++
	}

	return result("posts queued for resync",
		"updated", updated,
		"failed", failed,
		"total", len(posts),
	), nil
}
