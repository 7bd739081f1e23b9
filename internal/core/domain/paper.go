package domain

import "time"

// Paper is one accepted paper as read from the input table.
// Optional fields are empty strings when the source cell is missing.
type Paper struct {
	// ID is the zero-based position of the row among all data rows,
	// assigned before rows without a title are dropped.
	ID int

	// Title is the text that gets embedded. Never empty.
	Title string

	Authors  string
	Session  string
	Location string
	URL      string
}

// Titles returns the title of every paper in order.
func Titles(papers []Paper) []string {
	titles := make([]string, len(papers))
	for i, p := range papers {
		titles[i] = p.Title
	}
	return titles
}

// Point is a coordinate in the reduced two-dimensional space.
type Point struct {
	X float64
	Y float64
}

// VisualizationRecord is the unit written to the data file consumed by the map front-end.
// X and Y are normalised to [0, 1] per projection.
type VisualizationRecord struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Authors  string  `json:"authors"`
	Session  string  `json:"session"`
	Location string  `json:"location"`
	URL      string  `json:"url"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Projection is the result of running one reduction algorithm over the embeddings.
type Projection struct {
	// Algorithm is the registry name of the reducer, e.g. "tsne".
	Algorithm string

	// Points holds the raw reducer output, aligned with the papers.
	Points []Point

	// Records holds the normalised points joined to paper metadata.
	Records []VisualizationRecord

	// DataPath and PlotPath are the files written for this projection.
	DataPath string
	PlotPath string
}

// Run describes one complete pipeline execution.
type Run struct {
	ID          string
	StartedAt   time.Time
	CompletedAt time.Time

	InputPath string
	OutputDir string

	Provider   string
	Model      string
	Dimensions int
	Seed       int64

	Papers      []Paper
	Projections []Projection
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	if r.CompletedAt.IsZero() {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
