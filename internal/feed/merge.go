package feed

import (
	"github.com/bookverse/bookverse/internal/models"
)

// Merge reconciles a freshly fetched server feed with the local copies.
//
// The server decides which posts exist and supplies their canonical
// fields. For a server post that also exists locally (same id, or for
// review posts the same review id) the local comments, likes and like
// state win, since they may carry optimistic edits the server has not
// observed yet. Local posts the server did not return follow the server
// posts, in-memory copies ahead of cached ones. Each id appears once.
func Merge(server, cached, inMemory []models.Post) []models.Post {
	locals := make([]models.Post, 0, len(inMemory)+len(cached))
	locals = append(locals, inMemory...)
	locals = append(locals, cached...)

	byID := make(map[models.ID]int, len(locals))
	byReview := make(map[models.ID]int)
	for i, p := range locals {
		if _, ok := byID[p.ID]; !ok {
			byID[p.ID] = i
		}
		if p.Type == models.PostTypeReview && !p.ReviewID.IsZero() {
			if _, ok := byReview[p.ReviewID]; !ok {
				byReview[p.ReviewID] = i
			}
		}
	}

	out := make([]models.Post, 0, len(server)+len(locals))
	seen := make(map[models.ID]bool, len(server)+len(locals))
	seenReview := make(map[models.ID]bool)

	for _, sp := range server {
		if seen[sp.ID] {
			continue
		}
		merged := sp.Clone()
		merged.IsLocal = false

		if idx, ok := findLocal(sp, byID, byReview); ok {
			local := locals[idx]
			if local.Comments != nil {
				merged.Comments = local.Clone().Comments
			}
			merged.Likes = local.Likes
			merged.IsLiked = local.IsLiked
			seen[local.ID] = true
			if !local.ReviewID.IsZero() {
				seenReview[local.ReviewID] = true
			}
		}
		if merged.Comments == nil {
			merged.Comments = []models.Comment{}
		}

		seen[merged.ID] = true
		if merged.Type == models.PostTypeReview && !merged.ReviewID.IsZero() {
			seenReview[merged.ReviewID] = true
		}
		out = append(out, merged)
	}

	for _, lp := range locals {
		if seen[lp.ID] {
			continue
		}
		if lp.Type == models.PostTypeReview && !lp.ReviewID.IsZero() && seenReview[lp.ReviewID] {
			continue
		}
		p := lp.Clone()
		if p.Comments == nil {
			p.Comments = []models.Comment{}
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

func findLocal(sp models.Post, byID, byReview map[models.ID]int) (int, bool) {
	if idx, ok := byID[sp.ID]; ok {
		return idx, true
	}
	if sp.Type != models.PostTypeReview {
		return 0, false
	}
	for _, key := range []models.ID{sp.ReviewID, sp.ID} {
		if key.IsZero() {
			continue
		}
		if idx, ok := byReview[key]; ok {
			return idx, true
		}
	}
	return 0, false
}

// withoutIDs drops posts whose id is in hidden
func withoutIDs(posts []models.Post, hidden []string) []models.Post {
	if len(hidden) == 0 {
		return posts
	}
	skip := make(map[models.ID]bool, len(hidden))
	for _, id := range hidden {
		skip[models.ID(id)] = true
	}
	out := posts[:0:0]
	for _, p := range posts {
		if !skip[p.ID] {
			out = append(out, p)
		}
	}
	return out
}
