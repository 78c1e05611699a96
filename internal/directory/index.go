package directory

import (
	"outreach/internal"
	"outreach/internal/util"
)

// Index maps cleaned name tokens to candidate positions.
type Index struct {
	Candidates []internal.DirectoryCandidate
	ByToken    map[string][]int
	ByEmail    map[string]int
}

func BuildIndex(candidates []internal.DirectoryCandidate) *Index {
	idx := &Index{
		Candidates: candidates,
		ByToken:    map[string][]int{},
		ByEmail:    map[string]int{},
	}

	for i, c := range candidates {
		if c.Email != "" {
			if _, ok := idx.ByEmail[c.Email]; !ok {
				idx.ByEmail[c.Email] = i
			}
		}
		name := c.DisplayName
		if c.First != "" || c.Last != "" {
			name += " " + c.First + " " + c.Last
		}
		for _, token := range util.Tokenize(name) {
			idx.ByToken[token] = append(idx.ByToken[token], i)
		}
	}

	return idx
}

// Lookup returns candidates sharing at least one token with name, in
// index order.
func (idx *Index) Lookup(name string) []internal.DirectoryCandidate {
	hit := map[int]struct{}{}
	for _, token := range util.Tokenize(name) {
		for _, i := range idx.ByToken[token] {
			hit[i] = struct{}{}
		}
	}
	out := make([]internal.DirectoryCandidate, 0, len(hit))
	for i, c := range idx.Candidates {
		if _, ok := hit[i]; ok {
			out = append(out, c)
		}
	}
	return out
}
