// Package cli provides output formatting for the SIH command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Asim-Shah-2004/SIH/internal/models"
	"github.com/Asim-Shah-2004/SIH/pkg/utils"
)

// OutputFormat is the format for CLI output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat maps a flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "text", "":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteRecommendations writes a recommendation response to w in the given format.
func WriteRecommendations(w io.Writer, response *models.RecommendationResponse, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	}
	fmt.Fprintf(w, "\n%d recommendations in %dms\n\n", response.Total, response.QueryTime)
	for i, rec := range response.Recommendations {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "#%d  %s by %s", i+1, rec.PostID, rec.Author.Name)
		if rec.IsConnectionPost {
			fmt.Fprintf(w, "  [connection]")
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "semantic: %.4f | priority: %.4f\n", rec.SemanticScore, rec.InteractionPriority)
		fmt.Fprintf(w, "likes: %d  comments: %d  shares: %d\n",
			len(rec.Engagements.Likes), len(rec.Engagements.Comments), len(rec.Engagements.Shares))
		fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(rec.Text, 200))
	}
	return nil
}

// WriteSearchResults writes post search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	}
	fmt.Fprintf(w, "\nFound %d results in %dms for %q\n\n", response.Total, response.QueryTime, response.Query)
	for _, result := range response.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f (Keyword: %.4f, Semantic: %.4f)\n",
			result.Rank, result.Score, result.KeywordScore, result.SemanticScore)
		fmt.Fprintf(w, "Post: %s (author %s)\n", result.Post.ID, result.Post.AuthorID)
		fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(result.Post.Text, 200))
	}
	return nil
}
