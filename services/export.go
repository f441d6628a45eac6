package services

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ExportPolicy decides what a batch export does when one client fails.
type ExportPolicy int

const (
	// FailFast aborts the whole export on the first failed client.
	FailFast ExportPolicy = iota
	// ContinueOnError renders every client it can and reports the rest.
	ContinueOnError
)

// ParseExportPolicy maps "fail-fast" and "continue" to a policy.
func ParseExportPolicy(s string) (ExportPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail-fast", "failfast":
		return FailFast, nil
	case "continue", "continue-on-error":
		return ContinueOnError, nil
	}
	return FailFast, fmt.Errorf("unknown export policy %q", s)
}

func (p ExportPolicy) String() string {
	if p == ContinueOnError {
		return "continue"
	}
	return "fail-fast"
}

// ExportReport itemizes a batch export.
type ExportReport struct {
	Succeeded []string
	Failed    []ClientFailure
}

// ReportEntryName is the archive entry itemizing a partial export.
const ReportEntryName = "export_report.txt"

// Summary lists every client with its outcome, one per line.
func (r ExportReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d succeeded, %d failed\n", len(r.Succeeded), len(r.Failed))
	for _, name := range r.Succeeded {
		fmt.Fprintf(&b, "OK\t%s\n", name)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(&b, "FAILED\t%s\t%v\n", f.Client, f.Err)
	}
	return b.String()
}

// Archive is a zip of client documents.
type Archive struct {
	FileName string
	Content  []byte
	Report   ExportReport
}

// ArchiveFileName is the download name of a batch export.
func ArchiveFileName(date string) string {
	return fmt.Sprintf("all_pricelists_%s.zip", date)
}

// ExportAll renders one document per distinct client, in first-seen order,
// and zips them. Under FailFast the first failure is returned wrapped in an
// ExportAggregationError with no archive. Under ContinueOnError the archive of
// successful clients is returned together with an ExportAggregationError
// listing the failures, and the archive gains a ReportEntryName entry.
func ExportAll(t *Table, r *Renderer, date string, policy ExportPolicy) (*Archive, error) {
	if err := CheckClientNames(t); err != nil {
		return nil, &ExportAggregationError{Failures: []ClientFailure{{Err: err}}}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	report := ExportReport{}
	used := make(map[string]int)

	for _, name := range ClientNames(t) {
		doc, err := renderClient(t, r, name, date)
		if err == nil {
			doc.FileName = uniqueEntryName(used, doc.FileName)
			err = addToArchive(zw, doc)
		}
		if err != nil {
			report.Failed = append(report.Failed, ClientFailure{Client: name, Err: err})
			if policy == FailFast {
				agg := &ExportAggregationError{Failures: report.Failed}
				if cerr := zw.Close(); cerr != nil {
					return nil, errors.Join(agg, fmt.Errorf("close archive: %w", cerr))
				}
				return nil, agg
			}
			continue
		}
		report.Succeeded = append(report.Succeeded, name)
	}

	if len(report.Failed) > 0 {
		summary := &Document{FileName: ReportEntryName, Content: []byte(report.Summary())}
		if err := addToArchive(zw, summary); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}

	archive := &Archive{
		FileName: ArchiveFileName(date),
		Content:  buf.Bytes(),
		Report:   report,
	}
	if len(report.Failed) > 0 {
		return archive, &ExportAggregationError{Failures: report.Failed}
	}
	return archive, nil
}

func renderClient(t *Table, r *Renderer, name, date string) (*Document, error) {
	group, err := GroupByClient(t, name)
	if err != nil {
		return nil, err
	}
	return r.Render(group, date)
}

// uniqueEntryName suffixes names that collide after sanitizing, e.g. "A/B"
// and "A:B".
func uniqueEntryName(used map[string]int, name string) string {
	used[name]++
	if n := used[name]; n > 1 {
		ext := path.Ext(name)
		return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
	}
	return name
}

func addToArchive(zw *zip.Writer, doc *Document) error {
	w, err := zw.Create(doc.FileName)
	if err != nil {
		return fmt.Errorf("add %s to archive: %w", doc.FileName, err)
	}
	if _, err := w.Write(doc.Content); err != nil {
		return fmt.Errorf("write %s to archive: %w", doc.FileName, err)
	}
	return nil
}
