package pagerank

import (
	"context"
	"errors"
	"io/ioutil"
	"sync"
	"time"

	"Rank_Engine/linkgraph/graph"
	"Rank_Engine/pagerank"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// GraphAPI defines as set of API methods for fetching the links and edges
// from the link graph.
type GraphAPI interface {
	Links(fromID, toID uuid.UUID, retrievedBefore time.Time) (graph.LinkIterator, error)
	Edges(fromID, toID uuid.UUID, updatedBefore time.Time) (graph.EdgeIterator, error)
}

// ScoreAPI defines a set of API methods for publishing the PageRank score
// of stored links.
type ScoreAPI interface {
	UpdateScore(linkID uuid.UUID, score float64) error
}

// Config encapsulates the settings for configuring the PageRank service.
type Config struct {
	// An API for interating links and edges from the link graph.
	GraphAPI GraphAPI

	// An API for publishing the computed PageRank scores.
	ScoreAPI ScoreAPI

	// A clock instance for generating time-related events. If not specified,
	// the default wall-clock will be used instead.
	Clock clock.Clock

	// The time between subsequent PageRank passes.
	UpdateInterval time.Duration

	// Settings for the PageRank ranker. Zero values select the ranker
	// defaults.
	DampingFactor        float64
	Samples              int
	ConvergenceThreshold float64
	MaxIterations        int
	ComputeWorkers       int

	// The number of top-ranked pages to include in the pass summary. If not
	// specified, a default value of 5 will be used instead.
	TopPages int

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.GraphAPI == nil {
		err = multierror.Append(err, xerrors.Errorf("graph API has not been provided"))
	}
	if cfg.ScoreAPI == nil {
		err = multierror.Append(err, xerrors.Errorf("score API has not been provided"))
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.UpdateInterval <= 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for update interval"))
	}
	if cfg.TopPages <= 0 {
		cfg.TopPages = 5
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Service periodically ranks the pages of the link graph with both the
// sampling and the iterative PageRank methods, reports both results and
// publishes the iterative scores.
type Service struct {
	cfg    Config
	ranker *pagerank.Ranker
}

// NewService creates a new PageRank service instance with the specified config.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("pagerank service: config validation failed: %w", err)
	}

	ranker, err := pagerank.NewRanker(pagerank.Config{
		DampingFactor:        cfg.DampingFactor,
		Samples:              cfg.Samples,
		ConvergenceThreshold: cfg.ConvergenceThreshold,
		MaxIterations:        cfg.MaxIterations,
		ComputeWorkers:       cfg.ComputeWorkers,
		Logger:               cfg.Logger,
	})
	if err != nil {
		return nil, xerrors.Errorf("pagerank service: %w", err)
	}

	return &Service{
		cfg:    cfg,
		ranker: ranker,
	}, nil
}

// Name implements service.Service
func (svc *Service) Name() string { return "PageRank" }

// Run implements service.Service
func (svc *Service) Run(ctx context.Context) error {
	svc.cfg.Logger.WithField("update_interval", svc.cfg.UpdateInterval.String()).Info("starting service")
	defer svc.cfg.Logger.Info("stopped service")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-svc.cfg.Clock.After(svc.cfg.UpdateInterval):
			if err := svc.UpdateScores(ctx); err != nil {
				// A pass interrupted by shutdown is not a failure.
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// rankResult holds the output of one PageRank method.
type rankResult struct {
	ranks pagerank.RankVector
	err   error
}

// UpdateScores executes a single PageRank pass over a snapshot of the link
// graph and publishes the iterative scores through the score API.
func (svc *Service) UpdateScores(ctx context.Context) error {
	svc.cfg.Logger.Info("starting PageRank update pass")
	startAt := svc.cfg.Clock.Now()

	lg, linkIDs, err := graph.Snapshot(svc.cfg.GraphAPI, startAt)
	if err != nil {
		return xerrors.Errorf("pagerank service: unable to load link graph: %w", err)
	}
	if lg.Len() == 0 {
		svc.cfg.Logger.Info("skipping PageRank update pass: link graph is empty")
		return nil
	}

	// Both methods only read the graph so they can safely run side by side.
	var (
		wg                sync.WaitGroup
		sampled, iterated rankResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		sampled.ranks, sampled.err = svc.ranker.Sample(ctx, lg)
	}()
	go func() {
		defer wg.Done()
		iterated.ranks, iterated.err = svc.ranker.Iterate(ctx, lg)
	}()
	wg.Wait()

	if sampled.err != nil {
		err = multierror.Append(err, xerrors.Errorf("sampling: %w", sampled.err))
	}
	if iterated.err != nil {
		if !errors.Is(iterated.err, pagerank.ErrNotConverged) {
			err = multierror.Append(err, xerrors.Errorf("iteration: %w", iterated.err))
		} else {
			svc.cfg.Logger.WithField("err", iterated.err.Error()).Warn("publishing best-effort PageRank scores")
		}
	}
	if err != nil {
		return xerrors.Errorf("pagerank service: %w", err)
	}

	svc.reportScores(lg, sampled.ranks, iterated.ranks)

	for page, score := range iterated.ranks {
		if err = svc.cfg.ScoreAPI.UpdateScore(linkIDs[page], score); err != nil {
			return xerrors.Errorf("pagerank service: unable to update score for %q: %w", page, err)
		}
	}

	svc.cfg.Logger.WithFields(logrus.Fields{
		"processed_link_count": lg.Len(),
		"elapsed_time":         svc.cfg.Clock.Now().Sub(startAt).String(),
	}).Info("completed PageRank update pass")
	return nil
}

// reportScores logs the scores computed by both methods side by side.
func (svc *Service) reportScores(lg graph.LinkGraph, sampled, iterated pagerank.RankVector) {
	for _, page := range lg.Pages() {
		svc.cfg.Logger.WithFields(logrus.Fields{
			"page":           page,
			"sampled_rank":   sampled[page],
			"iterated_rank":  iterated[page],
			"outgoing_links": lg.OutDegree(page),
		}).Debug("PageRank score")
	}

	top := iterated.Ranked()
	if len(top) > svc.cfg.TopPages {
		top = top[:svc.cfg.TopPages]
	}

	var maxDiff float64
	for page, score := range iterated {
		if diff := score - sampled[page]; diff > maxDiff {
			maxDiff = diff
		} else if -diff > maxDiff {
			maxDiff = -diff
		}
	}

	svc.cfg.Logger.WithFields(logrus.Fields{
		"page_count":       lg.Len(),
		"samples":          svc.ranker.Config().Samples,
		"damping_factor":   svc.ranker.Config().DampingFactor,
		"top_pages":        top,
		"max_method_delta": maxDiff,
	}).Info("PageRank scores computed")
}
