package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/harmonia-app/harmonia/internal/common"
	"github.com/harmonia-app/harmonia/internal/model"
	"github.com/harmonia-app/harmonia/internal/service"
)

// Search runs a case-insensitive substring search over one catalog tree and
// returns a relevance-ranked page. The entire matching candidate set is
// scored and sorted before limit/offset are applied; pushing the page bounds
// into the query would silently break relevance ordering across pages.
func (s *Service) Search(ctx context.Context, in SearchInput, userID string) (*SearchPage, error) {
	query := strings.TrimSpace(in.Query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, common.NewValidationError("query",
			fmt.Sprintf("must be at least %d characters", MinQueryLength))
	}
	if !in.CatalogType.Valid() {
		return nil, common.NewValidationError("catalogType", "unknown catalog type "+string(in.CatalogType))
	}

	limit := in.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	candidates, err := s.store.FindMany(ctx, service.ItemFilter{
		CatalogType: in.CatalogType,
		VisibleTo:   &userID,
		ParentID:    in.ParentID,
		Query:       query,
		ActiveOnly:  true,
	})
	if err != nil {
		slog.Error("failed to query search candidates", "catalog_type", in.CatalogType, "error", err)
		return nil, common.Internal(err)
	}

	ranked := make(model.RankedItems, 0, len(candidates))
	for _, item := range candidates {
		if !item.MatchesQuery(query) {
			continue
		}
		ranked = append(ranked, model.RankedItem{
			Item:  item,
			Score: item.RelevanceScore(query),
		})
	}
	ranked.Sort()

	total := len(ranked)
	page := ranked.Page(limit, offset)

	results := make([]SearchResult, 0, len(page))
	for _, match := range page {
		result, buildErr := s.buildSearchResult(ctx, match, userID)
		if buildErr != nil {
			return nil, buildErr
		}
		results = append(results, *result)
	}

	return &SearchPage{
		Results:    results,
		Count:      len(results),
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    offset+len(results) < total,
	}, nil
}

// buildSearchResult attaches breadcrumbs, a parent summary and the active
// children to one ranked match.
func (s *Service) buildSearchResult(ctx context.Context, match model.RankedItem, userID string) (*SearchResult, error) {
	item := match.Item

	crumbs, err := s.Breadcrumbs(ctx, &item, userID)
	if err != nil {
		return nil, err
	}

	var parent *ParentSummary
	if item.ParentID != nil {
		p, findErr := s.store.FindByID(ctx, *item.ParentID)
		if findErr != nil {
			slog.Error("failed to load search result parent", "id", *item.ParentID, "error", findErr)
			return nil, common.Internal(findErr)
		}
		if p != nil && p.VisibleTo(userID) {
			parent = &ParentSummary{ID: p.ID, Name: p.Name, Slug: p.Slug}
		}
	}

	children, err := s.visibleChildren(ctx, item.ID, userID)
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Item:           item,
		RelevanceScore: match.Score,
		Breadcrumbs:    crumbs,
		Parent:         parent,
		Children:       children,
	}, nil
}
