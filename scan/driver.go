package scan

import (
	"context"
	"path"
	"strings"

	"github.com/gaurav-prasanna/tmplscan/core"
	"github.com/gaurav-prasanna/tmplscan/core/output"
	"github.com/gaurav-prasanna/tmplscan/templateset"
)

// Driver runs the discovery loop. It owns the working set and the
// backing directory for the duration of a run; evaluation is strictly
// sequential so every acceptance is visible to the very next candidate.
type Driver struct {
	store     core.ObjectStore
	extractor core.Extractor
	oracle    templateset.Oracle
	set       *templateset.Set
	writer    *output.Writer
	prefix    string

	// Progress, if set, is invoked once per evaluated candidate.
	Progress func(Result)
}

// New assembles a Driver over a bootstrapped set.
func New(
	store core.ObjectStore,
	extractor core.Extractor,
	oracle templateset.Oracle,
	set *templateset.Set,
	writer *output.Writer,
	prefix string,
) *Driver {
	return &Driver{
		store:     store,
		extractor: extractor,
		oracle:    oracle,
		set:       set,
		writer:    writer,
		prefix:    prefix,
	}
}

// Run scans the remote listing until the target is reached, the source
// is exhausted, the context is canceled, or the listing fails. The
// returned error is non-nil only for the fatal case; everything
// accepted so far stays on disk regardless of how the run ends.
func (d *Driver) Run(ctx context.Context) (summary Summary, err error) {
	summary = newSummary(d.set.Capacity())
	defer func() { summary.SetSize = d.set.Size() }()

	// Bootstrap may already have satisfied the target; in that case no
	// listing request is ever issued.
	if d.set.IsFull() {
		summary.Reason = ReasonTargetReached
		return summary, nil
	}

	lister := d.store.List(d.prefix)
	for lister.HasMorePages() {
		if ctx.Err() != nil {
			summary.Reason = ReasonInterrupted
			return summary, nil
		}

		page, pageErr := lister.NextPage(ctx)
		if pageErr != nil {
			if ctx.Err() != nil {
				summary.Reason = ReasonInterrupted
				return summary, nil
			}
			summary.Reason = ReasonFatalError
			return summary, pageErr
		}

		for _, ref := range page {
			// Cap and cancellation are checked per object, not per page,
			// so the scan can stop mid-page.
			if d.set.IsFull() {
				summary.Reason = ReasonTargetReached
				return summary, nil
			}
			if ctx.Err() != nil {
				summary.Reason = ReasonInterrupted
				return summary, nil
			}

			summary.Listed++
			res := d.evaluate(ctx, ref)
			summary.record(res)
			if d.Progress != nil {
				d.Progress(res)
			}
		}
	}

	summary.Reason = ReasonSourceExhausted
	return summary, nil
}

// evaluate runs one candidate through the decision chain. All transient
// buffers (payload, rendered image) are scoped to this call and released
// when it returns.
func (d *Driver) evaluate(ctx context.Context, ref core.ObjectRef) Result {
	if !strings.EqualFold(path.Ext(ref.Key), output.Ext) {
		return Result{Key: ref.Key, Outcome: OutcomeSkippedNotPDF}
	}

	// The cheap existence check strictly precedes any network cost.
	if d.writer.Exists(ref.Key) {
		return Result{Key: ref.Key, Outcome: OutcomeSkippedExists}
	}

	payload, err := d.store.Get(ctx, ref.Key)
	if err != nil {
		return Result{Key: ref.Key, Outcome: OutcomeSkippedRetrieval, Err: err}
	}

	fp, err := d.extractor.FromBytes(payload)
	if err != nil {
		return Result{Key: ref.Key, Outcome: OutcomeSkippedUnrenderable, Err: err}
	}

	if d.oracle.IsDuplicate(fp, d.set) {
		return Result{Key: ref.Key, Outcome: OutcomeDuplicate}
	}

	// Persist first, then grow the set, so every entry has a backing file.
	if _, err := d.writer.Write(ref.Key, payload); err != nil {
		return Result{Key: ref.Key, Outcome: OutcomeSkippedPersist, Err: err}
	}
	d.set.Accept(templateset.Entry{
		Filename:    output.FilenameForKey(ref.Key),
		Fingerprint: fp,
	})
	return Result{Key: ref.Key, Outcome: OutcomeAccepted}
}
