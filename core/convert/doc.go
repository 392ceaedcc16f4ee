// Package convert implements the one-way normalization from stored
// conversation messages to provider-facing messages, plus the flattening of
// provider responses into persistable metadata.
//
// Normalization is a pure transform over the closed stored-role set: every
// role maps to exactly one provider message shape, and an unknown role is a
// hard error ([ErrUnrecognizedRole]) rather than a silent coercion. Tool-call
// and tool-result payloads are stored as JSON arrays inside the message
// content; parsing tolerates malformed payloads by attempting a jsonrepair
// pass and degrading to an empty list, so one corrupted historical record
// never breaks normalization of an entire conversation.
package convert
