package types

// PageText is the raw text of one physical report page. Page numbers are
// 1-based and keep their original value even when earlier pages are empty
// or fail to extract.
type PageText struct {
	Page    int
	Content string
}

// PageResult is the output of one page task. Page identity travels with the
// result so that filtering failed pages never breaks the mapping between a
// result and the page it came from.
type PageResult struct {
	Page    int
	Content string
	Failed  bool
}

// ReportResult is the outcome of a full pipeline run. FinalReport is empty
// when synthesis failed; the per-page analyses remain valid in that case.
type ReportResult struct {
	Pages       []PageResult
	FinalReport string
}
