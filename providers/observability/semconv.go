package observability

// Semantic conventions for observability attributes.
// These constants define standard attribute names to ensure consistency
// across different components of the system.

// --- Conversation / Store Attributes ---

const (
	// AttrConversationID is the conversation a message belongs to
	AttrConversationID = "conversation.id"

	// AttrMessageID is the store-assigned message identifier
	AttrMessageID = "message.id"

	// AttrMessageRole is the stored role of a message
	AttrMessageRole = "message.role"

	// AttrMessageLength is the content length of a message, in bytes
	AttrMessageLength = "message.length"

	// AttrStoreTotalMessages is the running message count of a conversation
	AttrStoreTotalMessages = "store.total_messages"
)

// --- Stream Accumulator Attributes ---

const (
	// AttrStreamChunks is the number of fragments received by a stream session
	AttrStreamChunks = "stream.chunks"

	// AttrStreamDuration is the wall-clock duration of a stream session
	AttrStreamDuration = "stream.duration"

	// AttrStreamError is the error text captured by a failed stream session
	AttrStreamError = "stream.error"
)

// --- Provider Response Attributes ---

const (
	// AttrResponseID is the provider-assigned response identifier
	AttrResponseID = "response.id"

	// AttrResponseModel is the model that produced a response
	AttrResponseModel = "response.model"

	// AttrResponseTokens is the total token count reported by the provider
	AttrResponseTokens = "response.tokens" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Status Attributes ---

const (
	// AttrStatus is the terminal status of a span
	AttrStatus = "status"

	// AttrStatusDescription is a human-readable status description
	AttrStatusDescription = "status.description"
)

// --- Event Names ---

const (
	// EventStoreAppend is recorded when a message is appended to a store
	EventStoreAppend = "store.append"

	// EventStoreClear is recorded when a conversation is cleared
	EventStoreClear = "store.clear"

	// EventStreamOpen is recorded when a stream session is opened
	EventStreamOpen = "stream.open"

	// EventStreamComplete is recorded when a stream session completes
	EventStreamComplete = "stream.complete"

	// EventStreamFail is recorded when a stream session fails
	EventStreamFail = "stream.fail"
)
