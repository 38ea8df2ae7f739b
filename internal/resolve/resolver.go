package resolve

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"namearchive/internal/logging"
	"namearchive/internal/namestore"
	"namearchive/internal/ratelimit"
	"namearchive/internal/services/gemini"
)

// maxCandidateLength bounds normalized candidates in runes.
const maxCandidateLength = 64

const maxDetailLength = 200

// Status is the terminal outcome class of one resolution attempt.
type Status int

const (
	StatusFound Status = iota
	StatusNotFound
	StatusRateLimited
	StatusUpstreamRateLimited
	StatusUpstreamTimeout
	StatusUpstreamError
)

// Outcome carries the terminal status of a resolution together with the page
// data on success and a bounded diagnostic detail on failure.
type Outcome struct {
	Status Status
	Page   *namestore.Page
	Detail string
}

// Generator is the slice of the generation client the resolver needs.
type Generator interface {
	ValidateName(ctx context.Context, candidate string) (gemini.Validation, error)
	GenerateAnchors(ctx context.Context, candidate string) (namestore.AnchorSet, error)
}

// Resolver runs the lookup pipeline for one process.
type Resolver struct {
	store     *namestore.Store
	limiter   *ratelimit.Limiter
	generator Generator
	logger    *slog.Logger
}

// New constructs a resolver over the shared store, limiter and generator.
func New(store *namestore.Store, limiter *ratelimit.Limiter, generator Generator, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:     store,
		limiter:   limiter,
		generator: generator,
		logger:    logging.NewComponentLogger(logger, "resolve"),
	}
}

// NormalizeCandidate trims a raw candidate, collapses internal whitespace,
// applies Unicode NFC, and caps the length.
func NormalizeCandidate(raw string) string {
	candidate := norm.NFC.String(strings.TrimSpace(raw))
	candidate = strings.Join(strings.Fields(candidate), " ")
	if runes := []rune(candidate); len(runes) > maxCandidateLength {
		candidate = string(runes[:maxCandidateLength])
	}
	return candidate
}

// Resolve runs the full pipeline for a requested name on behalf of the given
// client identity. It never returns an error: every failure is folded into
// the outcome status.
func (r *Resolver) Resolve(ctx context.Context, rawName, identity string) Outcome {
	name := NormalizeCandidate(rawName)
	if name == "" {
		return Outcome{Status: StatusNotFound}
	}

	if !r.limiter.Admit(identity) {
		r.logger.Warn("request rate limited",
			logging.String("name", name),
			logging.String("identity", identity))
		return Outcome{Status: StatusRateLimited}
	}

	page, err := r.store.PageFor(ctx, name)
	if err != nil {
		r.logger.Error("page lookup failed", logging.String("name", name), logging.Error(err))
		return Outcome{Status: StatusNotFound, Detail: detail(err)}
	}
	if page != nil {
		return Outcome{Status: StatusFound, Page: page}
	}

	rejected, err := r.store.IsRejected(ctx, name)
	if err != nil {
		r.logger.Error("negative cache lookup failed", logging.String("name", name), logging.Error(err))
		return Outcome{Status: StatusNotFound, Detail: detail(err)}
	}
	if rejected {
		return Outcome{Status: StatusNotFound}
	}

	verdict, err := r.generator.ValidateName(ctx, name)
	if err != nil {
		// Admissibility was never evaluated, so no negative-cache entry.
		return r.upstreamOutcome("validation", name, err)
	}
	if !verdict.Admissible {
		r.logger.Info("name judged inadmissible",
			logging.String("name", name),
			logging.String("reason", verdict.Reason))
		if recErr := r.store.RecordRejected(ctx, name, verdict.Reason); recErr != nil {
			r.logger.Error("record rejection failed", logging.String("name", name), logging.Error(recErr))
		}
		return Outcome{Status: StatusNotFound, Detail: verdict.Reason}
	}

	anchors, err := r.generator.GenerateAnchors(ctx, name)
	if err != nil {
		return r.upstreamOutcome("synthesis", name, err)
	}

	if err := r.store.Upsert(ctx, name, anchors); err != nil {
		if isInterpolationReject(err) {
			r.logger.Warn("synthesized anchors rejected", logging.String("name", name), logging.Error(err))
			return Outcome{Status: StatusNotFound, Detail: detail(err)}
		}
		r.logger.Error("series upsert failed", logging.String("name", name), logging.Error(err))
		return Outcome{Status: StatusUpstreamError, Detail: detail(err)}
	}

	page, err = r.store.PageFor(ctx, name)
	if err != nil || page == nil {
		// Inconsistency between a committed upsert and the re-read; observable
		// in the log, never fatal to the request.
		r.logger.Error("series missing after upsert", logging.String("name", name), logging.Error(err))
		return Outcome{Status: StatusNotFound, Detail: detail(err)}
	}

	r.logger.Info("name resolved", logging.String("name", page.Name), logging.Int("points", len(page.Series)))
	return Outcome{Status: StatusFound, Page: page}
}

func (r *Resolver) upstreamOutcome(step, name string, err error) Outcome {
	status := StatusUpstreamError
	switch {
	case errors.Is(err, gemini.ErrUpstreamRateLimited):
		status = StatusUpstreamRateLimited
	case errors.Is(err, gemini.ErrUpstreamTimeout):
		status = StatusUpstreamTimeout
	}
	r.logger.Error("upstream call failed",
		logging.String("step", step),
		logging.String("name", name),
		logging.Error(err))
	return Outcome{Status: status, Detail: detail(err)}
}

func isInterpolationReject(err error) bool {
	return errors.Is(err, namestore.ErrMissingBoundary) ||
		errors.Is(err, namestore.ErrTooFewAnchors) ||
		errors.Is(err, namestore.ErrIncompleteSeries)
}

func detail(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if runes := []rune(msg); len(runes) > maxDetailLength {
		msg = string(runes[:maxDetailLength])
	}
	return msg
}
