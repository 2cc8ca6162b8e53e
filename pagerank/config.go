package pagerank

import (
	"io/ioutil"
	"math/rand"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

const (
	defaultDampingFactor        = 0.85
	defaultSamples              = 10000
	defaultConvergenceThreshold = 0.001
	defaultMaxIterations        = 10000
)

// Config encapsulates the required parameters for creating a new PageRank
// Ranker instance.
type Config struct {
	// DampingFactor is the probability that a random surfer will click on
	// one of the outgoing links on the page they are currently visiting
	// instead of visiting (teleporting to) a random page in the graph.
	//
	// If not specified, a default value of 0.85 will be used instead.
	DampingFactor float64

	// Samples is the number of pages visited by the random surfer when
	// estimating scores by sampling. If not specified, a default value of
	// 10000 will be used instead.
	Samples int

	// The iterative solver keeps running until no page score changes by
	// more than ConvergenceThreshold between two consecutive rounds.
	//
	// If not specified, a default value of 0.001 will be used instead.
	ConvergenceThreshold float64

	// MaxIterations caps the number of rounds executed by the iterative
	// solver. If not specified, a default value of 10000 will be used
	// instead.
	MaxIterations int

	// The number of workers to spin up for computing PageRank scores
	// iteratively. If not specified, a default value of 1 will be used
	// instead.
	ComputeWorkers int

	// Rand is the source of randomness for the sampler. Access to it is
	// serialized by the Ranker. If not specified, each sampling run gets
	// its own source seeded with Seed or, if Seed is zero, with the
	// current time.
	Rand *rand.Rand

	// Seed for the per-run random sources. Ignored if Rand is specified.
	Seed int64

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

// validate checks whether the PageRank ranker configuration is valid and
// sets the default values where required.
func (c *Config) validate() error {
	var err error
	if c.DampingFactor == 0 {
		c.DampingFactor = defaultDampingFactor
	} else if dErr := checkDampingFactor(c.DampingFactor); dErr != nil {
		err = multierror.Append(err, dErr)
	}

	if c.Samples < 0 {
		err = multierror.Append(err, xerrors.Errorf("%d: %w", c.Samples, ErrInvalidSampleCount))
	} else if c.Samples == 0 {
		c.Samples = defaultSamples
	}

	if !(c.ConvergenceThreshold >= 0 && c.ConvergenceThreshold < 1.0) {
		err = multierror.Append(err, xerrors.New("convergence threshold must be in the range (0, 1)"))
	} else if c.ConvergenceThreshold == 0 {
		c.ConvergenceThreshold = defaultConvergenceThreshold
	}

	if c.MaxIterations < 0 {
		err = multierror.Append(err, xerrors.New("max iterations must be a positive integer"))
	} else if c.MaxIterations == 0 {
		c.MaxIterations = defaultMaxIterations
	}

	if c.ComputeWorkers <= 0 {
		c.ComputeWorkers = 1
	}

	if c.Logger == nil {
		c.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}

	return err
}
