package pipeline

import (
	"strings"

	"outreach/internal"
	"outreach/internal/config"
	"outreach/internal/util"
)

type Matcher struct {
	normalizer   *Normalizer
	scanFallback bool
	scanMinScore float64
}

func NewMatcher(cfg config.Config, normalizer *Normalizer) *Matcher {
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	return &Matcher{
		normalizer:   normalizer,
		scanFallback: cfg.MatchScanFallback,
		scanMinScore: cfg.MatchScanMinScore,
	}
}

type candidateName struct {
	first string
	last  string
}

// Match picks the directory entry for query. Rules are tried in order and
// the first one that fires wins: unique exact name, unique surname, email
// local part among surname matches, sole candidate. When none fires the
// result is AMBIGUOUS, optionally rescued by the token-overlap scan.
func (m *Matcher) Match(query internal.NormalizedName, candidates []internal.DirectoryCandidate) internal.MatchResult {
	if len(candidates) == 0 {
		return internal.MatchResult{Status: internal.MatchNotFound, Reason: internal.ReasonNone}
	}

	names := make([]candidateName, len(candidates))
	for i, c := range candidates {
		names[i] = m.parseCandidate(c)
	}

	exact := -1
	for i, n := range names {
		if n.first == query.First && n.last == query.Last {
			if exact >= 0 {
				exact = -1
				break
			}
			exact = i
		}
	}
	if exact >= 0 {
		return m.accept(query, candidates, exact, internal.ReasonExact)
	}

	surname := make([]int, 0, len(candidates))
	for i, n := range names {
		if n.last == query.Last {
			surname = append(surname, i)
		}
	}
	if len(surname) == 1 {
		return m.accept(query, candidates, surname[0], internal.ReasonSurname)
	}

	if len(surname) > 1 {
		if i, ok := m.localPartHit(query, candidates, names, surname); ok {
			return m.accept(query, candidates, i, internal.ReasonLocalPart)
		}
	}

	if len(candidates) == 1 {
		return m.accept(query, candidates, 0, internal.ReasonSole)
	}

	if m.scanFallback {
		if best, score := ScanBest(query, candidates); best >= 0 && score >= m.scanMinScore {
			res := m.accept(query, candidates, best, internal.ReasonScan)
			res.Score = score
			return res
		}
	}

	return internal.MatchResult{Status: internal.MatchAmbiguous, Reason: internal.ReasonNone, Candidates: len(candidates)}
}

// localPartHit accepts a surname match whose mailbox starts with jsmith or
// john.smith. The hit only counts when no other surname match shares the
// query's first initial, since jsmith could then belong to either person.
func (m *Matcher) localPartHit(query internal.NormalizedName, candidates []internal.DirectoryCandidate, names []candidateName, surname []int) (int, bool) {
	if query.First == "" {
		return -1, false
	}
	initial := query.First[:1]
	prefixes := []string{initial + query.Last, query.First + "." + query.Last}

	hit := -1
	for _, i := range surname {
		email := util.CleanEmail(candidates[i].Email)
		if !util.ValidEmail(email) {
			continue
		}
		local := util.LocalPart(email)
		for _, p := range prefixes {
			if strings.HasPrefix(local, p) {
				if hit >= 0 {
					return -1, false
				}
				hit = i
				break
			}
		}
	}
	if hit < 0 {
		return -1, false
	}
	for _, i := range surname {
		if i != hit && strings.HasPrefix(names[i].first, initial) {
			return -1, false
		}
	}
	return hit, true
}

func (m *Matcher) accept(query internal.NormalizedName, candidates []internal.DirectoryCandidate, i int, reason internal.MatchReason) internal.MatchResult {
	chosen := candidates[i]
	email := util.CleanEmail(chosen.Email)
	status := internal.MatchOK
	if !util.ValidEmail(email) {
		status = internal.MatchNoEmail
		email = ""
	}
	return internal.MatchResult{
		Status:     status,
		Reason:     reason,
		Email:      email,
		Score:      Score(query, chosen),
		Candidate:  &chosen,
		Candidates: len(candidates),
	}
}

// parseCandidate reduces a directory entry to cleaned first and last tokens
// the same way Normalize does: honorifics, initials, middle names and
// suffixes are dropped.
func (m *Matcher) parseCandidate(c internal.DirectoryCandidate) candidateName {
	rules := m.normalizer.Rules()
	var firstFields, lastFields []string

	switch {
	case strings.TrimSpace(c.First) != "" || strings.TrimSpace(c.Last) != "":
		firstFields = strings.Fields(c.First)
		lastFields = strings.Fields(c.Last)
	case strings.Contains(c.DisplayName, ","):
		idx := strings.Index(c.DisplayName, ",")
		lastFields = strings.Fields(c.DisplayName[:idx])
		firstFields = strings.Fields(strings.ReplaceAll(c.DisplayName[idx+1:], ",", " "))
	default:
		fields := strings.Fields(c.DisplayName)
		if len(fields) > 0 {
			firstFields = fields[:len(fields)-1]
			lastFields = fields[len(fields)-1:]
		}
	}

	first := ""
	if tokens := m.normalizer.keyTokens(m.normalizer.stripHonorifics(firstFields)); len(tokens) > 0 {
		first = util.CleanToken(tokens[0])
	}

	last := ""
	for i := len(lastFields) - 1; i >= 0; i-- {
		if rules.Classify(lastFields[i]) == ClassSuffix {
			continue
		}
		if tok := util.CleanToken(lastFields[i]); tok != "" {
			last = tok
			break
		}
	}
	return candidateName{first: first, last: last}
}

// Score is the share of the query's tokens found in the candidate's display
// name.
func Score(query internal.NormalizedName, candidate internal.DirectoryCandidate) float64 {
	qset := map[string]struct{}{}
	for _, t := range query.Tokens {
		qset[t] = struct{}{}
	}
	denom := len(qset)
	if denom == 0 {
		denom = 1
	}
	overlap := 0
	for _, t := range TextTokens(candidate.DisplayName) {
		if _, ok := qset[t]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(denom)
}

// ScanBest walks candidates with an email and keeps the first one whose
// score beats everything seen before it. Returns -1 when no candidate has
// an email.
func ScanBest(query internal.NormalizedName, candidates []internal.DirectoryCandidate) (int, float64) {
	best := -1
	bestScore := -1.0
	for i, c := range candidates {
		if !util.ValidEmail(util.CleanEmail(c.Email)) {
			continue
		}
		if s := Score(query, c); s > bestScore {
			best = i
			bestScore = s
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, bestScore
}

// MatchScan resolves by token overlap alone. Institutions whose directory
// returns loosely related people use it instead of the rule path.
func (m *Matcher) MatchScan(query internal.NormalizedName, candidates []internal.DirectoryCandidate) internal.MatchResult {
	if len(candidates) == 0 {
		return internal.MatchResult{Status: internal.MatchNotFound, Reason: internal.ReasonNone}
	}
	best, score := ScanBest(query, candidates)
	if best < 0 || score <= 0 || score < m.scanMinScore {
		return internal.MatchResult{Status: internal.MatchAmbiguous, Reason: internal.ReasonNone, Candidates: len(candidates)}
	}
	res := m.accept(query, candidates, best, internal.ReasonScan)
	res.Score = score
	return res
}
