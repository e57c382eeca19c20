// Package provider is the generic plug-in layer for swappable backends.
// Speech model engines and translation clients both register here: a named
// factory builds the instance, the registry caches it, and a selector picks
// which one serves a request.
//
//	reg := provider.NewRegistry[transcription.Backend]()
//	reg.RegisterFactory("whisper", whisper.Factory())
//	backend, err := reg.Create("whisper", cfg)
package provider
