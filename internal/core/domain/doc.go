// Package domain defines the core entities of the paper map pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Paper: One row of the accepted papers table
//   - Point: A two-dimensional coordinate produced by a reducer
//   - VisualizationRecord: A normalised point joined to its paper
//   - Projection: The output of one reduction algorithm
//   - Run: Everything one pipeline execution produced
//   - PipelineConfig: The explicit configuration of a run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
