package recorder

// NoopRecorder discards everything. The dashboard uses it so that browsing
// does not fill the output directory.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(_ *AnalysisRecord) (*Outputs, error)     { return &Outputs{}, nil }
func (n *NoopRecorder) RecordComparison(_ *ComparisonRecord) (*Outputs, error) { return &Outputs{}, nil }
func (n *NoopRecorder) Close() error                                           { return nil }
