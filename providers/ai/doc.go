// Package ai defines the provider-facing message and response shapes shared
// by every component of the shim. Stored conversation history is normalized
// into [Message] values before being handed to an LLM provider SDK, and
// provider results flow back in as [ChatResponse] values whose metadata is
// flattened for persistence.
//
// ChatResponse models the provider response with explicit optionality:
// fields a provider did not report are absent (nil pointer, empty string,
// empty slice) rather than zero-filled, so downstream code can distinguish
// "not reported" from "reported as zero".
package ai
