package export

// SummaryLine is a label/value pair printed above the table in document formats.
type SummaryLine struct {
	Label string
	Value string
}

// Dataset defines tabular export content. Rows are positional and must match
// the length of Headers.
type Dataset struct {
	Title   string
	Summary []SummaryLine
	Headers []string
	Rows    [][]string
}
