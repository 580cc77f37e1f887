package search

import (
	"context"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/poiesic/audex/ai"
	"github.com/poiesic/audex/core"
	"github.com/poiesic/audex/storage"
)

const (
	// rrfK dampens the weight of top ranks in reciprocal rank fusion.
	rrfK = 60

	// candidateMultiplier widens the per-sub-index candidate pool so that
	// fusion has more than `limit` items to reorder.
	candidateMultiplier = 3
)

// Planner runs hybrid searches over the audio catalog.
type Planner struct {
	repository storage.AudioRepository
	embedder   ai.Embedder
	logger     *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPlanner creates a new hybrid search planner.
func NewPlanner(repository storage.AudioRepository, provider ai.Provider, opts ...Option) (*Planner, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	p := &Planner{
		repository: repository,
		embedder:   provider.Embedder(),
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Search runs a hybrid search and returns up to request.Limit results
// ranked by fused relevance.
func (p *Planner) Search(ctx context.Context, request *core.SearchRequest) ([]*core.SearchResult, error) {
	return p.SearchWithMonitor(ctx, request, nil)
}

// SearchWithMonitor runs a hybrid search with monitoring callbacks at each
// stage. The request is validated and normalized in place before execution.
func (p *Planner) SearchWithMonitor(ctx context.Context, request *core.SearchRequest, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if err := core.ValidateSearchRequest(request); err != nil {
		return nil, err
	}

	monitor.Start(request)

	filter := &core.RecordFilter{
		Type:        request.Type,
		Tags:        request.Tags,
		MinDuration: request.MinDuration,
		MaxDuration: request.MaxDuration,
	}
	candidates := request.Limit * candidateMultiplier

	// Both sub-index searches run concurrently. The vector leg embeds the
	// query first; the lexical leg needs no embedding and usually wins the
	// race.
	var lexMatches, vecMatches []core.Match
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		matches, err := p.repository.SearchLexical(groupCtx, request.Query, candidates, filter)
		if err != nil {
			p.logger.Error("lexical search failed", "query", request.Query, "err", err)
			return err
		}
		lexMatches = matches
		return nil
	})

	group.Go(func() error {
		vector, err := p.embedder.EmbedText(groupCtx, request.Query)
		if err != nil {
			p.logger.Error("error generating embedding for query", "query", request.Query, "err", err)
			return err
		}
		matches, err := p.repository.SearchVector(groupCtx, vector, candidates, filter)
		if err != nil {
			p.logger.Error("vector search failed", "err", err)
			return err
		}
		vecMatches = matches
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	monitor.AfterLexicalSearch(lexMatches)
	monitor.AfterVectorSearch(vecMatches)

	fused := fuseRanks(lexMatches, vecMatches)
	if len(fused) > request.Limit {
		fused = fused[:request.Limit]
	}
	monitor.AfterFusion(fused)

	results, err := p.materialize(ctx, fused)
	if err != nil {
		return nil, err
	}

	monitor.Finish(results)
	return results, nil
}

// fuseRanks merges ranked lists with reciprocal rank fusion. A record
// appearing in both lists accumulates both contributions, so agreement
// between the sub-indexes pushes it up. Raw sub-index scores are ignored;
// only positions matter.
func fuseRanks(lists ...[]core.Match) []core.Match {
	scores := make(map[core.ID]float32)
	for _, list := range lists {
		for rank, match := range list {
			scores[match.Id] += 1.0 / float32(rrfK+rank+1)
		}
	}

	fused := make([]core.Match, 0, len(scores))
	for id, score := range scores {
		fused = append(fused, core.Match{Id: id, Score: score})
	}
	slices.SortFunc(fused, func(a, b core.Match) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})
	return fused
}

// materialize loads the records behind the fused matches, preserving fusion
// order. Records deleted between ranking and retrieval are dropped.
func (p *Planner) materialize(ctx context.Context, fused []core.Match) ([]*core.SearchResult, error) {
	if len(fused) == 0 {
		return []*core.SearchResult{}, nil
	}

	ids := make([]core.ID, len(fused))
	scores := make(map[core.ID]float32, len(fused))
	for i, match := range fused {
		ids[i] = match.Id
		scores[match.Id] = match.Score
	}

	records, err := p.repository.GetMany(ctx, ids...)
	if err != nil {
		p.logger.Error("error retrieving fused records", "err", err)
		return nil, err
	}

	results := make([]*core.SearchResult, 0, len(records))
	for _, record := range records {
		results = append(results, &core.SearchResult{
			Record: record,
			Score:  scores[record.Id],
		})
	}
	return results, nil
}
