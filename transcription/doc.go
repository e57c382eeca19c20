// Package transcription implements the speech-to-text core: model sizing,
// transcription options, result normalization, confidence estimation, and a
// lazily-loading service handle.
//
// Backends plug in through the Loader/Model interfaces and register via the
// provider package:
//
//	reg := transcription.NewRegistry()
//	reg.RegisterFactory("whisper", whisper.Factory())
//
// The usual entry point is a LazyService, which defers model loading until
// the first transcription call:
//
//	svc := transcription.NewLazyService(loader, transcription.ModelSizeFromEnv())
//	text, meta, err := svc.TranscribeFile(ctx, "audio.webm", "")
//
// # Backends
//
//   - transcription/whisper: faster-whisper HTTP sidecar
//   - transcription/whispercpp: whisper.cpp CLI
package transcription
