// Package matcher implements the face sifting run: one reference embedding,
// a batch of candidate images, Euclidean distance matching, and file copies.
package matcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-sieve/internal/extractor"
	"github.com/kozaktomas/face-sieve/internal/imaging"
)

// DefaultTolerance is the balanced matching sensitivity
// (0.4 = strict, 0.6 = balanced, 0.8 = lenient).
const DefaultTolerance = 0.6

// DefaultDedupeThreshold is the Hamming distance under which two copied
// files count as near-duplicates when --dedupe is on.
const DefaultDedupeThreshold = 10

// Matcher runs face matching batches against a single reference face.
type Matcher struct {
	extractor extractor.Extractor
	log       *logrus.Entry
}

// New creates a Matcher using the given extractor backend. The logger is
// scoped to a single run by the caller.
func New(ext extractor.Extractor, log *logrus.Entry) *Matcher {
	return &Matcher{
		extractor: ext,
		log:       log,
	}
}

// Options configures a single batch run.
type Options struct {
	Tolerance       float64 // maximum Euclidean distance for a match (inclusive)
	Concurrency     int     // number of parallel workers; <=1 means linear
	DryRun          bool    // report matches without writing copies
	Dedupe          bool    // suppress near-duplicate copies within the run
	DedupeThreshold int     // Hamming distance threshold for --dedupe
	Limit           int     // max candidates to evaluate (0 = no limit)
	OnProgress      func(done, total int)
}

// Stats are the accumulated counters of a batch run.
type Stats struct {
	Processed int `json:"processed"`
	Copied    int `json:"copied"`
	Errors    int `json:"errors"`
}

// SuccessRate returns (processed - errors) / processed, or 0 when nothing
// was processed.
func (s Stats) SuccessRate() float64 {
	if s.Processed == 0 {
		return 0
	}
	return float64(s.Processed-s.Errors) / float64(s.Processed)
}

// Match describes a candidate that matched the reference face.
type Match struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
	Copied   bool    `json:"copied"`
}

// Report is the structured result of a completed batch run.
type Report struct {
	Stats   Stats   `json:"stats"`
	Matches []Match `json:"matches"`
}

// Outcome classifies what happened to a single candidate.
type Outcome string

const (
	OutcomeMatched Outcome = "matched"
	OutcomeNoMatch Outcome = "no_match"
	OutcomeNoFaces Outcome = "no_faces"
	OutcomeFailed  Outcome = "failed"
)

// candidateResult is the typed per-file result aggregated by the run loop.
type candidateResult struct {
	name        string
	outcome     Outcome
	minDistance float64
	err         error
	data        []byte          // candidate bytes, kept for the copy
	hashes      *imaging.Hashes // set when dedupe is on and the file matched
}

// ExtractReference loads the reference image and returns its face embedding.
// Failures are SetupErrors: they abort the run before any candidate work.
// When the reference contains multiple faces the first one in detector order
// is used and a warning is logged; the tie-break is arbitrary but fixed.
func (m *Matcher) ExtractReference(ctx context.Context, path string) ([]float32, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &SetupError{Reason: ReasonReferenceMissing, Err: fmt.Errorf("reference image not found: %w", err)}
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the CLI invocation
	if err != nil {
		return nil, &SetupError{Reason: ReasonReferenceInvalid, Err: fmt.Errorf("failed to read reference image: %w", err)}
	}

	faces, err := m.extractor.ExtractFaces(ctx, data)
	if err != nil {
		return nil, &SetupError{Reason: ReasonReferenceInvalid, Err: fmt.Errorf("failed to process reference image: %w", err)}
	}

	if len(faces) == 0 {
		return nil, &SetupError{Reason: ReasonNoFaceInReference, Err: ErrNoFaceInReference}
	}

	if len(faces) > 1 {
		m.log.WithFields(logrus.Fields{
			"reference": path,
			"faces":     len(faces),
		}).Warn("Multiple faces found in reference image. Using the first one.")
	}

	return faces[0].Embedding, nil
}

// Run executes a full batch: reference extraction, candidate evaluation,
// copies, and counter aggregation. Setup failures return a SetupError and a
// nil Report; per-candidate failures are absorbed into the error counter and
// never abort the batch. Cancelling the context stops the batch early and
// returns the partial Report together with the context error.
func (m *Matcher) Run(ctx context.Context, referencePath, datasetDir, outputDir string, opts Options) (*Report, error) {
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}
	if opts.DedupeThreshold <= 0 {
		opts.DedupeThreshold = DefaultDedupeThreshold
	}

	reference, err := m.ExtractReference(ctx, referencePath)
	if err != nil {
		return nil, err
	}
	m.log.WithField("reference", referencePath).Info("Reference face loaded successfully")

	info, err := os.Stat(datasetDir)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is not a directory", datasetDir)
		}
		return nil, &SetupError{Reason: ReasonDatasetMissing, Err: fmt.Errorf("dataset folder not found: %w", err)}
	}

	if !opts.DryRun {
		if err := os.MkdirAll(outputDir, 0o750); err != nil {
			return nil, &SetupError{Reason: ReasonOutputUnwritable, Err: fmt.Errorf("failed to create output folder: %w", err)}
		}
	}

	names, err := listCandidates(datasetDir)
	if err != nil {
		return nil, &SetupError{Reason: ReasonDatasetMissing, Err: err}
	}
	if opts.Limit > 0 && len(names) > opts.Limit {
		names = names[:opts.Limit]
	}

	if opts.Concurrency > 1 {
		return m.runParallel(ctx, names, datasetDir, outputDir, reference, opts)
	}
	return m.runLinear(ctx, names, datasetDir, outputDir, reference, opts)
}

func (m *Matcher) runLinear(ctx context.Context, names []string, datasetDir, outputDir string, reference []float32, opts Options) (*Report, error) {
	report := &Report{Matches: []Match{}}
	var copiedHashes []uint64
	done := 0

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := m.evaluateCandidate(ctx, datasetDir, name, reference, opts)
		m.finishCandidate(result, outputDir, opts, report, &copiedHashes)

		done++
		if opts.OnProgress != nil {
			opts.OnProgress(done, len(names))
		}
	}

	return report, nil
}

// runParallel distributes candidate evaluation over a worker pool. Counters
// and the output directory are the only shared state: counter updates happen
// under a mutex and identical output filenames are last-writer-wins.
func (m *Matcher) runParallel(ctx context.Context, names []string, datasetDir, outputDir string, reference []float32, opts Options) (*Report, error) {
	report := &Report{Matches: []Match{}}
	var copiedHashes []uint64
	var mu sync.Mutex
	done := 0

	sem := make(chan struct{}, opts.Concurrency)
	var wg sync.WaitGroup

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			break
		}

		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result := m.evaluateCandidate(ctx, datasetDir, name, reference, opts)

			mu.Lock()
			m.finishCandidate(result, outputDir, opts, report, &copiedHashes)
			done++
			if opts.OnProgress != nil {
				opts.OnProgress(done, len(names))
			}
			mu.Unlock()
		}(name)
	}

	wg.Wait()
	return report, ctx.Err()
}

// evaluateCandidate reads and extracts a single candidate without touching
// any shared state.
func (m *Matcher) evaluateCandidate(ctx context.Context, datasetDir, name string, reference []float32, opts Options) candidateResult {
	path := filepath.Join(datasetDir, name)

	data, err := os.ReadFile(path) //nolint:gosec // name comes from the dataset directory listing
	if err != nil {
		return candidateResult{name: name, outcome: OutcomeFailed, err: err}
	}

	faces, err := m.extractor.ExtractFaces(ctx, data)
	if err != nil {
		return candidateResult{name: name, outcome: OutcomeFailed, err: err}
	}

	if len(faces) == 0 {
		return candidateResult{name: name, outcome: OutcomeNoFaces}
	}

	embeddings := make([][]float32, len(faces))
	for i, f := range faces {
		embeddings[i] = f.Embedding
	}

	dist := MinDistance(embeddings, reference)
	if dist > opts.Tolerance {
		return candidateResult{name: name, outcome: OutcomeNoMatch, minDistance: dist}
	}

	result := candidateResult{name: name, outcome: OutcomeMatched, minDistance: dist, data: data}
	if opts.Dedupe {
		if img, _, err := imaging.Decode(data); err == nil {
			h := imaging.ComputeHashes(img)
			result.hashes = &h
		}
	}
	return result
}

// finishCandidate updates counters and performs the copy for one result.
// In parallel runs the caller holds the stats mutex.
func (m *Matcher) finishCandidate(result candidateResult, outputDir string, opts Options, report *Report, copiedHashes *[]uint64) {
	report.Stats.Processed++

	switch result.outcome {
	case OutcomeFailed:
		report.Stats.Errors++
		m.log.WithFields(logrus.Fields{
			"file":  result.name,
			"error": result.err,
		}).Error("Error processing candidate")

	case OutcomeNoFaces, OutcomeNoMatch:
		// Undetected faces and non-matches are not errors.

	case OutcomeMatched:
		if result.hashes != nil && m.isNearDuplicate(result.hashes.PHash, *copiedHashes, opts.DedupeThreshold) {
			m.log.WithField("file", result.name).Info("Skipping near-duplicate of an already copied file")
			return
		}

		match := Match{Name: result.name, Distance: result.minDistance}
		if opts.DryRun {
			match.Copied = true
			m.log.WithField("file", result.name).Info("[DRY-RUN] Would copy to output folder")
		} else if err := writeCopy(outputDir, result.name, result.data); err != nil {
			report.Stats.Errors++
			m.log.WithFields(logrus.Fields{
				"file":  result.name,
				"error": err,
			}).Error("Error copying candidate")
		} else {
			match.Copied = true
			m.log.WithFields(logrus.Fields{
				"file":     result.name,
				"distance": fmt.Sprintf("%.4f", result.minDistance),
			}).Info("Copied to output folder")
		}

		if match.Copied {
			report.Stats.Copied++
			if result.hashes != nil {
				*copiedHashes = append(*copiedHashes, result.hashes.PHash)
			}
		}
		report.Matches = append(report.Matches, match)
	}
}

func (m *Matcher) isNearDuplicate(phash uint64, copied []uint64, threshold int) bool {
	for _, h := range copied {
		if imaging.NearDuplicate(phash, h, threshold) {
			return true
		}
	}
	return false
}
