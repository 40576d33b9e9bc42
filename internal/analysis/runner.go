package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/youzhaozhao/ContractClarity/internal/llm"
	"github.com/youzhaozhao/ContractClarity/internal/retrieval"
)

const (
	stageMaxTokens    = 3000
	revisionMaxTokens = 4000
	stageTemperature  = 0.2
	retrievalK        = 6
)

// Runner executes the staged review for one job: risk review with retrieved
// statute context, negotiation email, negotiation scripts, full revision, then
// the merge. It is safe for concurrent use; each job is driven by exactly one
// worker.
type Runner struct {
	completer    llm.Completer
	searcher     retrieval.Searcher
	registry     *Registry
	stageTimeout time.Duration
	logger       zerolog.Logger
}

// NewRunner returns a Runner. stageTimeout bounds each external call.
func NewRunner(completer llm.Completer, searcher retrieval.Searcher, registry *Registry, stageTimeout time.Duration, logger zerolog.Logger) *Runner {
	return &Runner{
		completer:    completer,
		searcher:     searcher,
		registry:     registry,
		stageTimeout: stageTimeout,
		logger:       logger,
	}
}

// InitialProgress is the registry message for a freshly accepted job.
func InitialProgress(category string) string {
	return fmt.Sprintf("Initializing %s analysis...", category)
}

// Run drives every stage of jobID to completion or failure. It never returns
// an error: outcomes are recorded on the registry and discovered by polling.
// A stage failure abandons the remaining stages and whatever earlier stages
// produced.
func (r *Runner) Run(jobID, contractText, category, language string) {
	language = NormalizeLanguage(language)
	log := r.logger.With().Str("job_id", jobID).Str("category", category).Logger()

	// Stage 1: risk review grounded on retrieved statutes.
	r.registry.Update(jobID, 1, "Consulting reference statutes and reviewing risk...")
	passages, err := r.search(category, contractText)
	if err != nil {
		// Retrieval context is best-effort; review proceeds without it.
		log.Warn().Err(err).Msg("statute retrieval failed, continuing without context")
	}
	var report RiskReport
	if err := r.callJSON("risk review", riskReviewPrompt(language, category, lawsContext(passages), contractText), stageMaxTokens, &report); err != nil {
		r.fail(jobID, log, err)
		return
	}
	issues := issuesBrief(report.Issues)

	// Stage 2: negotiation email, then multi-style scripts.
	r.registry.Update(jobID, 2, "Drafting the detailed negotiation email...")
	var email EmailDraft
	if err := r.callJSON("negotiation email", emailPrompt(language, issues), stageMaxTokens, &email); err != nil {
		r.fail(jobID, log, err)
		return
	}

	r.registry.Update(jobID, 2, "Generating multi-style negotiation scripts...")
	var scripts Scripts
	if err := r.callJSON("negotiation scripts", scriptsPrompt(language, issues), stageMaxTokens, &scripts); err != nil {
		r.fail(jobID, log, err)
		return
	}

	// Stage 3: full contract revision.
	r.registry.Update(jobID, 3, "Producing the complete revised contract...")
	var revision Revision
	if err := r.callJSON("contract revision", revisionPrompt(language, contractText, issues), revisionMaxTokens, &revision); err != nil {
		r.fail(jobID, log, err)
		return
	}

	// Stage 4: merge.
	r.registry.Update(jobID, 4, "Merging the analysis report...")
	result := &Result{
		RiskReport: report,
		Negotiation: Negotiation{
			Strategy:  email.Strategy,
			Email:     email.Email,
			TalkTrack: scripts.TalkTrack,
			Styles:    scripts.Styles,
		},
		RevisedContract: revision.RevisedContract,
		RevisionNotes:   revision.RevisionNotes,
		RevisionSummary: revision.RevisionSummary,
	}
	r.registry.Complete(jobID, result, "Analysis complete.")
	log.Info().Msg("analysis completed")
}

// RefineOCR runs the single-call OCR cleanup used by the synchronous
// /ocr-refine endpoint.
func (r *Runner) RefineOCR(ctx context.Context, rawText string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.stageTimeout)
	defer cancel()
	out, err := r.completer.Complete(callCtx, llm.Request{
		Prompt:      OCRRefinePrompt(rawText),
		MaxTokens:   revisionMaxTokens,
		Temperature: 0.1,
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

func (r *Runner) search(category, contractText string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.stageTimeout)
	defer cancel()
	return r.searcher.Search(ctx, category, contractText, retrievalK)
}

// callJSON runs one model call under the stage deadline and decodes the reply.
// Jobs outlive the submitting request, so the deadline hangs off Background.
func (r *Runner) callJSON(stage, prompt string, maxTokens int, v interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.stageTimeout)
	defer cancel()
	out, err := r.completer.Complete(ctx, llm.Request{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: stageTemperature,
		JSONOutput:  true,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", stage, err)
	}
	return decodeStage(stage, out, v)
}

func (r *Runner) fail(jobID string, log zerolog.Logger, err error) {
	log.Error().Err(err).Msg("analysis failed")
	r.registry.Fail(jobID, err.Error(), fmt.Sprintf("%+v", err), "Analysis failed.")
}
