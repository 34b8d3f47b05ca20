package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/helixml/citetrack/domain/brand"
	"github.com/helixml/citetrack/domain/competitor"
	"github.com/helixml/citetrack/domain/feed"
	"github.com/helixml/citetrack/domain/memo"
	"github.com/helixml/citetrack/domain/prompt"
	"github.com/helixml/citetrack/domain/repository"
	"github.com/helixml/citetrack/domain/scan"
	"github.com/helixml/citetrack/internal/domain"
)

// Stores groups the record stores the services read and write.
type Stores struct {
	Brands      brand.BrandStore
	Prompts     prompt.PromptStore
	Scans       scan.ScanStore
	Memos       memo.MemoStore
	Competitors competitor.CompetitorStore
	Feeds       feed.FeedStore
	Posts       feed.PostStore
}

// loadBrand returns the brand if tenantID owns it. A brand owned by another
// tenant is reported as not found.
func (s Stores) loadBrand(ctx context.Context, tenantID, brandID string) (brand.Brand, error) {
	if _, err := uuid.Parse(brandID); err != nil {
		return brand.Brand{}, domain.Validation("invalid brand id %q", brandID)
	}
	b, err := s.Brands.FindOne(ctx, repository.WithID(brandID))
	if err != nil {
		return brand.Brand{}, storeError("brand", err)
	}
	if !b.OwnedBy(tenantID) {
		return brand.Brand{}, domain.NotFound("brand not found")
	}
	return b, nil
}
