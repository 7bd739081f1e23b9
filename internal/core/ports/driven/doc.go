// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for a pipeline run:
//
//   - PaperSource: Loads the accepted papers table
//   - EmbeddingService: Turns titles into vectors
//   - Reducer: Projects vectors to two dimensions
//   - RecordWriter: Writes the normalised data file
//   - PlotRenderer: Draws the scatter plot image
//
// # Optional Interfaces
//
// These can be nil - the pipeline skips the step:
//
//   - RunExporter: Persists whole runs for later comparison
//   - CorpusPreparer: Implemented by embedders that need the full corpus first
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
