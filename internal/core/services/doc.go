// Package services implements the driving port interfaces.
// Services hold the pipeline logic and call out to driven ports
// for loading, embedding, reducing and writing.
package services
