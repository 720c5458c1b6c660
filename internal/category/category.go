// Package category classifies events against a user's learned categories
// via an external embedding collaborator, and applies the matched defaults
// onto the event through a declarative copy-rule table.
package category

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/dagaz/internal/models"
)

// MatchThreshold is the minimum similarity score for a category match in
// the thresholded variant.
const MatchThreshold = 0.6

// ScoredCategory is one ranked candidate from the embedding search.
type ScoredCategory struct {
	Label string
	Score float64
}

// Vectorizer is the external embedding/similarity collaborator.
type Vectorizer interface {
	Vectorize(ctx context.Context, text string) ([]float64, error)
	Search(ctx context.Context, vector []float64, labels []string) ([]ScoredCategory, error)
}

// FindBestMatchCategory ranks the candidate labels by similarity to the
// event's text representation.
func FindBestMatchCategory(ctx context.Context, vz Vectorizer, event *models.Event, labels []string) ([]ScoredCategory, error) {
	if len(labels) == 0 {
		return nil, nil
	}
	text := strings.TrimSpace(event.Summary + " " + event.Notes)
	if text == "" {
		return nil, nil
	}
	vector, err := vz.Vectorize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize event %s: %w", event.ID, err)
	}
	ranked, err := vz.Search(ctx, vector, labels)
	if err != nil {
		return nil, fmt.Errorf("search categories for event %s: %w", event.ID, err)
	}
	return ranked, nil
}

// ProcessBestMatchCategories picks the top-scoring category at or above the
// match threshold. Ties break by highest score, then by most-recently-used
// category; categories must arrive in recency order. Nil means no match.
func ProcessBestMatchCategories(ranked []ScoredCategory, categories []models.Category) *models.Category {
	return pickBestMatch(ranked, categories, MatchThreshold)
}

// ProcessBestMatchCategoriesNoThreshold always returns the best available
// category; used for fallback meeting/external-meeting tagging.
func ProcessBestMatchCategoriesNoThreshold(ranked []ScoredCategory, categories []models.Category) *models.Category {
	return pickBestMatch(ranked, categories, 0)
}

func pickBestMatch(ranked []ScoredCategory, categories []models.Category, threshold float64) *models.Category {
	var best *models.Category
	bestScore := 0.0
	for _, candidate := range ranked {
		if candidate.Score < threshold {
			continue
		}
		cat := categoryByName(categories, candidate.Label)
		if cat == nil {
			continue
		}
		switch {
		case best == nil, candidate.Score > bestScore:
			best, bestScore = cat, candidate.Score
		case candidate.Score == bestScore && moreRecent(categories, cat, best):
			best = cat
		}
	}
	return best
}

func categoryByName(categories []models.Category, name string) *models.Category {
	for i := range categories {
		if categories[i].Name == name {
			return &categories[i]
		}
	}
	return nil
}

// moreRecent relies on the repository's recency ordering: a lower index is
// a more recently used category.
func moreRecent(categories []models.Category, a, b *models.Category) bool {
	ia, ib := -1, -1
	for i := range categories {
		if categories[i].ID == a.ID {
			ia = i
		}
		if categories[i].ID == b.ID {
			ib = i
		}
	}
	return ia >= 0 && ib >= 0 && ia < ib
}

// ProcessEventForMeetingTypeCategories attaches the synthetic Meeting and
// External Meeting categories from attendee composition, independent of the
// similarity match.
func ProcessEventForMeetingTypeCategories(event *models.Event, attendees []models.Attendee, categories []models.Category) []models.CategoryEvent {
	if len(attendees) < 2 {
		return nil
	}
	hasExternal := false
	for _, a := range attendees {
		if a.ExternalAttendee {
			hasExternal = true
			break
		}
	}

	var links []models.CategoryEvent
	if cat := categoryByName(categories, models.CategoryMeeting); cat != nil {
		links = append(links, newCategoryEvent(cat, event))
	} else {
		slog.Info("no Meeting category configured, skipping synthetic tag",
			slog.String("eventId", event.ID))
	}
	if hasExternal {
		if cat := categoryByName(categories, models.CategoryExternalMeeting); cat != nil {
			links = append(links, newCategoryEvent(cat, event))
		}
	}
	return links
}

func newCategoryEvent(cat *models.Category, event *models.Event) models.CategoryEvent {
	return models.CategoryEvent{
		ID:         uuid.NewString(),
		CategoryID: cat.ID,
		EventID:    event.ID,
		UserID:     event.UserID,
		Score:      1,
	}
}
