package domain

// ErrorCode is surfaced to the initiating client on a failed call action.
type ErrorCode string

const (
	CodeUserNotFound   ErrorCode = "USER_NOT_FOUND"
	CodeUserBusy       ErrorCode = "USER_BUSY"
	CodeCallerNotFound ErrorCode = "CALLER_NOT_FOUND"
	CodeOfferFailed    ErrorCode = "OFFER_FAILED"
	CodeAnswerFailed   ErrorCode = "ANSWER_FAILED"
)

// EndReason tells a participant why their call was torn down without them
// asking for it.
type EndReason string

const (
	ReasonPeerEnded        EndReason = "peer_ended"
	ReasonPeerDisconnected EndReason = "peer_disconnected"
	ReasonForceEnded       EndReason = "force_ended"
	ReasonServerShutdown   EndReason = "server_shutdown"
	ReasonStale            EndReason = "stale"
)
