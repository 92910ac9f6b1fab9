// Package render turns a fetched review batch into a Markdown document.
// Rendering is deterministic: the output depends only on the input data,
// never on progress callbacks or terminal state.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/baslie/yandex-reviews-to-md/models"
)

const (
	// Placeholder for a review without body text. Absent and empty are
	// treated identically.
	noTextPlaceholder = "_(no text)_"
	// Placeholder for a review without an author name.
	anonymousAuthor = "Anonymous"

	dateLayout = "02.01.2006"
)

// Options carries the cosmetic hooks of a render pass.
type Options struct {
	// OnItem, when non-nil, is called once per review with its 1-based
	// index and the batch size. It drives progress display only and has
	// no effect on the produced document.
	OnItem func(current, total int)
}

// Markdown renders the company summary and the ordered review batch into a
// single Markdown document. Reviews are neither filtered nor reordered: the
// numbered list reflects fetch order.
func Markdown(company models.Company, reviews []models.Review, opts Options) string {
	var md []string

	md = append(md, fmt.Sprintf("# %s\n", company.Name))
	md = append(md, fmt.Sprintf("**Rating:** %s/5  \n**Total votes:** %d\n",
		formatRating(company.Rating), company.RatingCount))
	md = append(md, "\n---\n")
	md = append(md, "## Reviews\n")

	for i, review := range reviews {
		idx := i + 1
		if opts.OnItem != nil {
			opts.OnItem(idx, len(reviews))
		}

		author := strings.TrimSpace(review.Author)
		if author == "" {
			author = anonymousAuthor
		}
		date := review.Published().Format(dateLayout)

		md = append(md, fmt.Sprintf("### %d. %s — %s", idx, author, date))
		md = append(md, fmt.Sprintf("**Rating:** %d/5\n", review.Stars))

		if text := strings.TrimSpace(review.Text); text != "" {
			md = append(md, text)
		} else {
			md = append(md, noTextPlaceholder)
		}

		if reply := strings.TrimSpace(review.CompanyReply); reply != "" {
			md = append(md, fmt.Sprintf("\n> **Company reply:** %s", reply))
		}

		md = append(md, "\n---\n")
	}

	return strings.Join(md, "\n")
}

// formatRating prints a rating without trailing zeros ("4.5", "4").
func formatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}
