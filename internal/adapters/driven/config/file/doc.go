// Package file loads pipeline configuration from the local filesystem and
// the process environment.
//
// Layers are applied in order, each overriding the previous:
//   - built-in defaults
//   - a TOML file (explicit path, else ./papermap.toml when present)
//   - a .env file and the process environment, under the PAPERMAP_ prefix
//   - caller overrides such as command-line flags
//
// Provider API keys fall back to OPENAI_API_KEY and GEMINI_API_KEY.
package file
