package yandex

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/baslie/yandex-reviews-to-md/models"
)

// Selectors for the current Yandex Maps reviews page markup. When Yandex
// changes the page again, this file is the only place that needs updating.
const (
	selReviewCard   = ".business-reviews-card-view__review"
	selAuthor       = "span[itemprop='name']"
	selIcon         = "div.user-icon-view__icon"
	selDateMeta     = "meta[itemprop='datePublished']"
	selBody         = "[class*='business-review-view__body']"
	selStarsMeta    = "meta[itemprop='ratingValue']"
	selReplyBubble  = ".business-review-comment-content__bubble"
	selCompanyName  = "h1.orgpage-header-view__header"
	selCompanyAlt   = "[class*='card-title-view__title']"
	selRatingBadge  = "[class*='business-summary-rating-badge-view__rating-text']"
	selReviewCount  = "meta[itemprop='reviewCount']"
	selRatingAmount = "[class*='business-rating-amount-view']"
)

// parseCompany extracts the business summary from the page header.
func parseCompany(doc *goquery.Document, id int64) models.Company {
	c := models.Company{ID: id}

	if name := strings.TrimSpace(doc.Find(selCompanyName).First().Text()); name != "" {
		c.Name = name
	} else {
		c.Name = strings.TrimSpace(doc.Find(selCompanyAlt).First().Text())
	}

	// The badge splits the rating into separate spans ("4", ",", "5").
	var ratingText strings.Builder
	doc.Find(selRatingBadge).Each(func(_ int, s *goquery.Selection) {
		ratingText.WriteString(strings.TrimSpace(s.Text()))
	})
	if v, err := strconv.ParseFloat(strings.ReplaceAll(ratingText.String(), ",", "."), 64); err == nil {
		c.Rating = v
	}

	if content, ok := doc.Find(selReviewCount).First().Attr("content"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(content)); err == nil {
			c.RatingCount = n
		}
	}
	if c.RatingCount == 0 {
		c.RatingCount = leadingInt(doc.Find(selRatingAmount).First().Text())
	}

	return c
}

// parseReviews extracts all review cards in page-encounter order.
func parseReviews(doc *goquery.Document) []models.Review {
	var reviews []models.Review

	doc.Find(selReviewCard).Each(func(_ int, card *goquery.Selection) {
		reviews = append(reviews, parseReviewCard(card))
	})

	return reviews
}

func parseReviewCard(card *goquery.Selection) models.Review {
	r := models.Review{
		Author: strings.TrimSpace(card.Find(selAuthor).First().Text()),
		Text:   strings.TrimSpace(card.Find(selBody).First().Text()),
	}

	// Avatar URL lives in an inline background-image style.
	if style, ok := card.Find(selIcon).First().Attr("style"); ok {
		if parts := strings.Split(style, `"`); len(parts) >= 2 {
			r.IconURL = parts[1]
		}
	}

	if content, ok := card.Find(selDateMeta).First().Attr("content"); ok {
		r.PublishedAt = parsePublished(content)
	}

	if content, ok := card.Find(selStarsMeta).First().Attr("content"); ok {
		if v, err := strconv.ParseFloat(strings.TrimSpace(content), 64); err == nil {
			r.Stars = int(v)
		}
	}

	r.CompanyReply = strings.TrimSpace(card.Find(selReplyBubble).First().Text())

	return r
}

// parsePublished converts the datePublished meta content to Unix seconds.
// Yandex emits full RFC 3339 timestamps; older snapshots carry bare dates.
func parsePublished(content string) int64 {
	content = strings.TrimSpace(content)

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, content); err == nil {
			return t.Unix()
		}
	}
	return 0
}

// leadingInt extracts the first run of digits from s (e.g. "512 reviews").
func leadingInt(s string) int {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, _ := strconv.Atoi(s[start:i])
			return n
		}
	}
	if start >= 0 {
		n, _ := strconv.Atoi(s[start:])
		return n
	}
	return 0
}
