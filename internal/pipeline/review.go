package pipeline

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"outreach/internal"
	"outreach/internal/util"
)

// NearestAlternative finds the candidate, other than the chosen one, whose
// cleaned display name is closest to the query by edit distance. Reviewers
// use it to spot near misses the rules refused to pick.
func NearestAlternative(query internal.NormalizedName, candidates []internal.DirectoryCandidate, chosen *internal.DirectoryCandidate) (string, int) {
	target := strings.Join(query.Tokens, " ")
	best := ""
	bestDist := -1
	for _, c := range candidates {
		if chosen != nil && c == *chosen {
			continue
		}
		name := strings.Join(util.Tokenize(c.DisplayName), " ")
		if name == "" {
			continue
		}
		d := levenshtein.ComputeDistance(target, name)
		if bestDist < 0 || d < bestDist {
			best = c.DisplayName
			bestDist = d
		}
	}
	if bestDist < 0 {
		return "", 0
	}
	return best, bestDist
}

func describeCandidate(c *internal.DirectoryCandidate) string {
	if c == nil {
		return ""
	}
	if c.Email == "" {
		return c.DisplayName
	}
	return c.DisplayName + " <" + util.CleanEmail(c.Email) + ">"
}
