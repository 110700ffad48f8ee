package scan

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/tmplscan/core"
	"github.com/gaurav-prasanna/tmplscan/core/output"
	"github.com/gaurav-prasanna/tmplscan/templateset"
)

// --- fakes ---

type fakeStore struct {
	pages     [][]core.ObjectRef
	objects   map[string][]byte
	listErrAt int // page index that fails; -1 for never
	listCalls int
	getCalls  map[string]int
}

func newFakeStore(pages [][]core.ObjectRef, objects map[string][]byte) *fakeStore {
	return &fakeStore{
		pages:     pages,
		objects:   objects,
		listErrAt: -1,
		getCalls:  make(map[string]int),
	}
}

func (f *fakeStore) List(prefix string) core.ObjectLister {
	f.listCalls++
	return &fakeLister{store: f}
}

func (f *fakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.getCalls[key]++
	payload, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return payload, nil
}

type fakeLister struct {
	store *fakeStore
	next  int
}

func (l *fakeLister) HasMorePages() bool {
	return l.next < len(l.store.pages)
}

func (l *fakeLister) NextPage(ctx context.Context) ([]core.ObjectRef, error) {
	if l.store.listErrAt >= 0 && l.next == l.store.listErrAt {
		return nil, errors.New("AccessDenied")
	}
	page := l.store.pages[l.next]
	l.next++
	return page, nil
}

// payloadExtractor maps payload contents to fingerprints.
// The payload "corrupt" always fails to render.
type payloadExtractor struct {
	bits map[string]uint64
}

func (e *payloadExtractor) FromBytes(pdf []byte) (core.Fingerprint, error) {
	if string(pdf) == "corrupt" {
		return core.Fingerprint{}, errors.New("render failed")
	}
	bits, ok := e.bits[string(pdf)]
	if !ok {
		return core.Fingerprint{}, errors.New("unknown payload")
	}
	return core.FingerprintFromBits(bits), nil
}

func (e *payloadExtractor) FromFile(path string) (core.Fingerprint, error) {
	pdf, err := os.ReadFile(path)
	if err != nil {
		return core.Fingerprint{}, err
	}
	return e.FromBytes(pdf)
}

// --- helpers ---

func refs(keys ...string) []core.ObjectRef {
	out := make([]core.ObjectRef, len(keys))
	for i, k := range keys {
		out[i] = core.ObjectRef{Key: k, Size: int64(100 + i)}
	}
	return out
}

func newTestDriver(t *testing.T, store *fakeStore, ex core.Extractor, capacity int) (*Driver, *templateset.Set, *output.Writer) {
	t.Helper()
	w, err := output.New(t.TempDir())
	require.NoError(t, err)
	set := templateset.NewSet(capacity)
	d := New(store, ex, templateset.Oracle{Threshold: 12}, set, w, "")
	return d, set, w
}

// --- tests ---

func TestRunAcceptsUniqueRejectsNearDuplicate(t *testing.T) {
	store := newFakeStore(
		[][]core.ObjectRef{refs("a.pdf", "b.pdf", "c.pdf")},
		map[string][]byte{
			"a.pdf": []byte("doc-a"),
			"b.pdf": []byte("doc-b"),
			"c.pdf": []byte("doc-c"),
		},
	)
	ex := &payloadExtractor{bits: map[string]uint64{
		"doc-a": 0x0,
		"doc-b": 0xff,   // distance 8 from a: duplicate
		"doc-c": 0x7fff, // distance 15 from a: unique
	}}
	d, set, w := newTestDriver(t, store, ex, 100)

	summary, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ReasonSourceExhausted, summary.Reason)
	assert.Equal(t, 2, summary.Accepted())
	assert.Equal(t, 1, summary.Counts[OutcomeDuplicate])
	assert.Equal(t, 2, set.Size())

	// Only accepted candidates are persisted.
	assert.True(t, w.Exists("a.pdf"))
	assert.False(t, w.Exists("b.pdf"))
	assert.True(t, w.Exists("c.pdf"))
}

func TestRunStopsAtTargetMidPage(t *testing.T) {
	store := newFakeStore(
		[][]core.ObjectRef{refs("a.pdf", "b.pdf", "c.pdf", "d.pdf")},
		map[string][]byte{
			"a.pdf": []byte("doc-a"),
			"b.pdf": []byte("doc-b"),
			"c.pdf": []byte("doc-c"),
			"d.pdf": []byte("doc-d"),
		},
	)
	ex := &payloadExtractor{bits: map[string]uint64{
		"doc-a": 0x0,
		"doc-b": 0xffffffff,
		"doc-c": 0xffffffffffffffff,
		"doc-d": 0xaaaaaaaa00000000,
	}}
	d, set, _ := newTestDriver(t, store, ex, 2)

	summary, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ReasonTargetReached, summary.Reason)
	assert.Equal(t, 2, set.Size())
	// The scan stopped before evaluating the remaining candidates.
	assert.Zero(t, store.getCalls["c.pdf"])
	assert.Zero(t, store.getCalls["d.pdf"])
	assert.Equal(t, 2, summary.Listed)
}

func TestRunTargetAlreadyReachedMakesNoRemoteCalls(t *testing.T) {
	store := newFakeStore([][]core.ObjectRef{refs("a.pdf")}, nil)
	ex := &payloadExtractor{}
	d, set, _ := newTestDriver(t, store, ex, 2)

	// Bootstrap already filled the set.
	set.Accept(templateset.Entry{Filename: "x.pdf", Fingerprint: core.FingerprintFromBits(0x0)})
	set.Accept(templateset.Entry{Filename: "y.pdf", Fingerprint: core.FingerprintFromBits(0xffffffff)})

	summary, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ReasonTargetReached, summary.Reason)
	assert.Zero(t, store.listCalls)
	assert.Empty(t, store.getCalls)
}

func TestRunFastSkipAvoidsRetrieval(t *testing.T) {
	store := newFakeStore(
		[][]core.ObjectRef{refs("prefix/seen.pdf", "new.pdf")},
		map[string][]byte{"new.pdf": []byte("doc-new")},
	)
	ex := &payloadExtractor{bits: map[string]uint64{"doc-new": 0x0}}
	d, _, w := newTestDriver(t, store, ex, 100)

	// A backing file from a prior run.
	_, err := w.Write("prefix/seen.pdf", []byte("old payload"))
	require.NoError(t, err)

	summary, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Counts[OutcomeSkippedExists])
	assert.Zero(t, store.getCalls["prefix/seen.pdf"], "no retrieval for an existing backing file")
	assert.Equal(t, 1, summary.Accepted())
}

func TestRunSkipsNonPDFWithoutRetrieval(t *testing.T) {
	store := newFakeStore(
		[][]core.ObjectRef{refs("readme.txt", "a.pdf")},
		map[string][]byte{"a.pdf": []byte("doc-a")},
	)
	ex := &payloadExtractor{bits: map[string]uint64{"doc-a": 0x0}}
	d, _, _ := newTestDriver(t, store, ex, 100)

	summary, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Counts[OutcomeSkippedNotPDF])
	assert.Zero(t, store.getCalls["readme.txt"])
	assert.Equal(t, 1, summary.Accepted())
}

func TestRunPerCandidateErrorsDoNotAbort(t *testing.T) {
	store := newFakeStore(
		[][]core.ObjectRef{refs("missing.pdf", "broken.pdf", "good.pdf")},
		map[string][]byte{
			"broken.pdf": []byte("corrupt"),
			"good.pdf":   []byte("doc-good"),
		},
	)
	ex := &payloadExtractor{bits: map[string]uint64{"doc-good": 0x0}}
	d, set, _ := newTestDriver(t, store, ex, 100)

	var results []Result
	d.Progress = func(r Result) { results = append(results, r) }

	summary, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ReasonSourceExhausted, summary.Reason)
	assert.Equal(t, 1, summary.Counts[OutcomeSkippedRetrieval])
	assert.Equal(t, 1, summary.Counts[OutcomeSkippedUnrenderable])
	assert.Equal(t, 1, summary.Accepted())
	assert.Equal(t, 1, set.Size())

	require.Len(t, results, 3)
	assert.Equal(t, OutcomeSkippedRetrieval, results[0].Outcome)
	assert.Error(t, results[0].Err)
	assert.Equal(t, OutcomeSkippedUnrenderable, results[1].Outcome)
	assert.Equal(t, OutcomeAccepted, results[2].Outcome)
}

func TestRunListingFailureIsFatal(t *testing.T) {
	store := newFakeStore(
		[][]core.ObjectRef{refs("a.pdf"), refs("b.pdf")},
		map[string][]byte{"a.pdf": []byte("doc-a"), "b.pdf": []byte("doc-b")},
	)
	store.listErrAt = 1
	ex := &payloadExtractor{bits: map[string]uint64{"doc-a": 0x0, "doc-b": 0xffffffff}}
	d, set, w := newTestDriver(t, store, ex, 100)

	summary, err := d.Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, ReasonFatalError, summary.Reason)
	// Partial progress from before the failure is preserved.
	assert.Equal(t, 1, set.Size())
	assert.True(t, w.Exists("a.pdf"))
}

func TestRunObservesCancellation(t *testing.T) {
	store := newFakeStore(
		[][]core.ObjectRef{refs("a.pdf", "b.pdf", "c.pdf")},
		map[string][]byte{
			"a.pdf": []byte("doc-a"),
			"b.pdf": []byte("doc-b"),
			"c.pdf": []byte("doc-c"),
		},
	)
	ex := &payloadExtractor{bits: map[string]uint64{
		"doc-a": 0x0,
		"doc-b": 0xffffffff,
		"doc-c": 0xffffffffffffffff,
	}}
	d, set, _ := newTestDriver(t, store, ex, 100)

	ctx, cancel := context.WithCancel(context.Background())
	d.Progress = func(r Result) {
		if r.Key == "b.pdf" {
			cancel()
		}
	}

	summary, err := d.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, ReasonInterrupted, summary.Reason)
	// Everything accepted before the interrupt stays; c.pdf was never seen.
	assert.Equal(t, 2, set.Size())
	assert.Zero(t, store.getCalls["c.pdf"])
}

func TestRunCanceledBeforeStart(t *testing.T) {
	store := newFakeStore([][]core.ObjectRef{refs("a.pdf")}, nil)
	d, _, _ := newTestDriver(t, store, &payloadExtractor{}, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := d.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReasonInterrupted, summary.Reason)
	assert.Empty(t, store.getCalls)
}

func TestRunRerunIsIdempotent(t *testing.T) {
	// Running discovery twice over the same source and directory must
	// not write duplicate files or grow the set on the second pass.
	pages := [][]core.ObjectRef{refs("a.pdf", "b.pdf")}
	objects := map[string][]byte{
		"a.pdf": []byte("doc-a"),
		"b.pdf": []byte("doc-b"),
	}
	bits := map[string]uint64{"doc-a": 0x0, "doc-b": 0xffffffff}

	dir := t.TempDir()
	w, err := output.New(dir)
	require.NoError(t, err)
	ex := &payloadExtractor{bits: bits}
	oracle := templateset.Oracle{Threshold: 12}

	// First run from an empty directory.
	store1 := newFakeStore(pages, objects)
	set1 := templateset.NewSet(100)
	d1 := New(store1, ex, oracle, set1, w, "")
	summary1, err := d1.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary1.Accepted())

	// Second run bootstraps from the files the first run wrote.
	files, err := w.ListBacking()
	require.NoError(t, err)
	set2, report, err := templateset.Bootstrap(files, ex, oracle, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded)

	store2 := newFakeStore(pages, objects)
	d2 := New(store2, ex, oracle, set2, w, "")
	summary2, err := d2.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, summary2.Accepted())
	assert.Equal(t, 2, summary2.Counts[OutcomeSkippedExists])
	assert.Empty(t, store2.getCalls, "existing files are skipped before any retrieval")
	assert.Equal(t, 2, set2.Size())
}
