package pipeline

// Observer receives cosmetic progress reports during an ingestion run.
// It is not part of the functional contract; the CLI renders stage banners
// from it.
type Observer interface {
	Stage(name string)
	Loaded(files, pages int)
	Chunked(chunks int)
	Uploaded(done, total int)
}

// NopObserver discards all progress reports.
type NopObserver struct{}

func (NopObserver) Stage(string)      {}
func (NopObserver) Loaded(int, int)   {}
func (NopObserver) Chunked(int)       {}
func (NopObserver) Uploaded(int, int) {}

// Stats summarizes a completed ingestion run.
type Stats struct {
	RunID    string
	Files    int
	Pages    int
	Chunks   int
	Uploaded int
}
