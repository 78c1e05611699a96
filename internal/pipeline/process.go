package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"outreach/internal"
	"outreach/internal/config"
	"outreach/internal/directory"
	"outreach/internal/util"
)

type ResolverOptions struct {
	Directory directory.Directory
	Pattern   EmailPattern
	Domain    string
	// Strategy is config.StrategyRules (default) or config.StrategyScan.
	Strategy string
	Logger   *slog.Logger
}

// Resolver drives records through normalization, lookup, prediction and
// aggregation in arrival order.
type Resolver struct {
	normalizer *Normalizer
	matcher    *Matcher
	dir        directory.Directory
	pattern    EmailPattern
	domain     string
	strategy   string
	logger     *slog.Logger
}

type RunStats struct {
	Records      int
	Rejected     int
	Skipped      int
	Lookups      int
	Resolved     int
	NoEmail      int
	Ambiguous    int
	NotFound     int
	Predicted    int
	LookupErrors int
	Interrupted  bool
	Duration     time.Duration
}

type RunResult struct {
	RunID       string
	Contacts    []internal.Contact
	Resolutions []internal.Resolution
	Stats       RunStats
}

func NewResolver(cfg config.Config, rules *Rules, opts ResolverOptions) *Resolver {
	normalizer := NewNormalizer(rules)
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = config.StrategyRules
	}
	return &Resolver{
		normalizer: normalizer,
		matcher:    NewMatcher(cfg, normalizer),
		dir:        opts.Directory,
		pattern:    opts.Pattern,
		domain:     strings.ToLower(strings.TrimSpace(opts.Domain)),
		strategy:   strategy,
		logger:     logger,
	}
}

func (r *Resolver) Normalizer() *Normalizer {
	return r.normalizer
}

type lookup struct {
	email      string
	resolution internal.Resolution
}

// Run processes records strictly in order. Per-record problems are logged
// and counted; cancelling ctx stops the loop and the contacts gathered so
// far are still returned with Stats.Interrupted set.
func (r *Resolver) Run(ctx context.Context, records []internal.RawRecord) (RunResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)

	agg := NewAggregator()
	var cf CarryForward
	stats := RunStats{}
	cache := map[string]*lookup{}
	resolutions := make([]internal.Resolution, 0)
	origin := ""

	for _, rec := range records {
		if ctx.Err() != nil {
			stats.Interrupted = true
			break
		}
		stats.Records++
		if rec.Origin != origin {
			// blank cells never inherit from another file
			cf = CarryForward{}
			origin = rec.Origin
		}

		var name *internal.NormalizedName
		if strings.TrimSpace(rec.Name) != "" {
			n, err := r.normalizer.Normalize(rec.Name)
			if err != nil {
				var rejected *RejectedNameError
				if errors.As(err, &rejected) {
					logger.Debug("name rejected", "origin", rec.Origin, "line", rec.LineNo, "name", rec.Name, "reason", rejected.Reason)
				}
				stats.Rejected++
				cf.Reject()
				continue
			}
			name = &n
		}

		name, email, ok := cf.Apply(name, util.CleanEmail(rec.Email))
		if !ok {
			stats.Skipped++
			continue
		}

		if name != nil && email == "" {
			key := name.First + " " + name.Last
			hit, cached := cache[key]
			if !cached {
				hit = r.resolve(ctx, logger, *name, rec.Name, &stats)
				cache[key] = hit
				resolutions = append(resolutions, hit.resolution)
			}
			email = hit.email
			cf.Resolve(email)
		}

		if !agg.Ingest(name, email, util.NormalizeCourse(rec.Course)) {
			stats.Skipped++
		}
	}

	stats.Duration = time.Since(start)
	logger.Info("resolve finished",
		"records", stats.Records,
		"contacts", agg.Len(),
		"rejected", stats.Rejected,
		"resolved", stats.Resolved,
		"predicted", stats.Predicted,
		"ambiguous", stats.Ambiguous,
		"not_found", stats.NotFound,
		"lookup_errors", stats.LookupErrors,
		"interrupted", stats.Interrupted,
		"duration_ms", stats.Duration.Milliseconds(),
	)

	return RunResult{
		RunID:       runID,
		Contacts:    agg.Snapshot(),
		Resolutions: resolutions,
		Stats:       stats,
	}, nil
}

func (r *Resolver) resolve(ctx context.Context, logger *slog.Logger, name internal.NormalizedName, raw string, stats *RunStats) *lookup {
	res := internal.Resolution{
		Query:   util.CollapseSpaces(raw),
		Display: name.Display,
		Status:  internal.MatchNotFound,
		Reason:  internal.ReasonNone,
	}

	var candidates []internal.DirectoryCandidate
	var match internal.MatchResult
	if r.dir != nil {
		stats.Lookups++
		found, err := r.dir.Search(ctx, name.Display)
		if err != nil {
			err = fmt.Errorf("%w: %s: %v", ErrLookupUnavailable, name.Display, err)
			logger.Warn("directory lookup failed", "name", name.Display, "error", err)
			stats.LookupErrors++
			res.LookupError = err.Error()
		} else {
			candidates = found
		}
	}

	if r.strategy == config.StrategyScan {
		match = r.matcher.MatchScan(name, candidates)
	} else {
		match = r.matcher.Match(name, candidates)
	}
	res.Status = match.Status
	res.Reason = match.Reason
	res.Email = match.Email
	res.Candidates = len(candidates)
	res.Chosen = describeCandidate(match.Candidate)
	res.Alternative, res.AlternativeDist = NearestAlternative(name, candidates, match.Candidate)

	switch match.Status {
	case internal.MatchOK:
		stats.Resolved++
	case internal.MatchNoEmail:
		stats.NoEmail++
	case internal.MatchAmbiguous:
		stats.Ambiguous++
		logger.Info("ambiguous match", "name", name.Display, "candidates", len(candidates), "error", ErrAmbiguousMatch)
	case internal.MatchNotFound:
		if predicted := Predict(name, r.pattern, r.domain); predicted != "" {
			res.Status = internal.MatchPredicted
			res.Reason = internal.ReasonPattern
			res.Email = predicted
			stats.Predicted++
		} else {
			stats.NotFound++
		}
	}

	return &lookup{email: res.Email, resolution: res}
}
