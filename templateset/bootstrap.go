package templateset

import (
	"path/filepath"

	"github.com/gaurav-prasanna/tmplscan/core"
)

// BootstrapReport summarizes what the loader found on disk.
type BootstrapReport struct {
	Loaded     int
	Duplicates int      // local files near-duplicate of an earlier one; kept on disk, excluded from the set
	Failed     []string // files that could not be fingerprinted
}

// Bootstrap reconstructs the working set from existing backing files,
// making a fresh process resume where the last one stopped.
//
// Files that fail to fingerprint are skipped so one corrupt file never
// blocks resumption. Each file is also checked against the set built so
// far: the set invariant (no two entries within the threshold) holds
// from the very first run, even if prior runs left near-duplicates on
// disk. Loading stops once the set reaches capacity; files beyond the
// target stay on disk but are neither rendered nor accepted.
func Bootstrap(paths []string, extractor core.Extractor, oracle Oracle, capacity int) (*Set, BootstrapReport, error) {
	set := NewSet(capacity)
	report := BootstrapReport{}

	for _, p := range paths {
		if set.IsFull() {
			break
		}
		fp, err := extractor.FromFile(p)
		if err != nil {
			report.Failed = append(report.Failed, p)
			continue
		}
		if oracle.IsDuplicate(fp, set) {
			report.Duplicates++
			continue
		}
		set.Accept(Entry{Filename: filepath.Base(p), Fingerprint: fp})
		report.Loaded++
	}

	return set, report, nil
}
