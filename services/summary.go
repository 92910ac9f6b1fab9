package services

import (
	"math"
	"strings"

	"github.com/baslie/yandex-reviews-to-md/models"
	"github.com/baslie/yandex-reviews-to-md/utils"
)

// SummaryService computes and reports aggregate stats over a fetched batch.
type SummaryService struct {
	logger *utils.Logger
}

// NewSummaryService creates a SummaryService with the given logger.
func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Generate computes the summary stats for a review batch.
func (s *SummaryService) Generate(reviews []models.Review) *models.ReviewStats {
	stats := &models.ReviewStats{Total: len(reviews)}
	if len(reviews) == 0 {
		return stats
	}

	var starsSum int
	stats.Oldest = reviews[0].Published()
	stats.Newest = reviews[0].Published()

	for _, r := range reviews {
		starsSum += r.Stars
		if strings.TrimSpace(r.Text) != "" {
			stats.WithText++
		}
		if strings.TrimSpace(r.CompanyReply) != "" {
			stats.WithReply++
		}

		published := r.Published()
		if published.Before(stats.Oldest) {
			stats.Oldest = published
		}
		if published.After(stats.Newest) {
			stats.Newest = published
		}
	}

	stats.AverageStars = round2(float64(starsSum) / float64(len(reviews)))
	return stats
}

// Log writes the summary to the application log.
func (s *SummaryService) Log(stats *models.ReviewStats) {
	if stats.Total == 0 {
		s.logger.Warn("[summary] No reviews collected")
		return
	}

	s.logger.Debug("[summary] Reviews: %d | avg stars: %.2f | with text: %d | with reply: %d",
		stats.Total, stats.AverageStars, stats.WithText, stats.WithReply)
	s.logger.Debug("[summary] Date range: %s — %s",
		stats.Oldest.Format("02.01.2006"), stats.Newest.Format("02.01.2006"))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
