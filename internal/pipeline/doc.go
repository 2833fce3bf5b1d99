// Package pipeline owns the locally loaded text-generation model. It is split into
// small files by concern:
//
//   - pipeline.go: Pipeline type, Load (run once), Ready/ModelName/Snapshot/Close.
//   - config.go: Config and package defaults.
//   - errors.go: error types and helpers (IsTooBusy, IsModelNotFound, ...).
//   - adapter.go: InferenceAdapter/InferSession runtime interfaces.
//   - admission.go: bounded queue and single in-flight generation.
//   - generate.go: Generate entry point and parameter mapping.
//
// Build tags and runtimes:
//
//   - In-process llama: go-llama.cpp adapter, enabled with `-tags=llama`.
//     Files: adapter_llama.go, llama_cgo.go (linker rpath hints).
//   - Default builds use adapter_llama_stub.go, which fails Load with a
//     dependency-unavailable error instead of producing fake text.
//
// A Pipeline is constructed once at process start and handed to the components
// that need it; nothing rebuilds it implicitly.
package pipeline
