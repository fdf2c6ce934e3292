// Package providers abstracts the external generative model behind the
// Generator interface.
//
// Implementations exist for Gemini (official SDK), OpenAI (go-openai),
// Anthropic, and Ollama/LM Studio (OpenAI-compatible HTTP). Only rate-limit
// responses are retried, with exponential backoff; authentication and other
// transport failures surface immediately for the caller to handle.
//
// The Transcriber boundary for audio/video inputs also lives here; the
// built-in implementation degrades to a bracketed placeholder.
package providers
