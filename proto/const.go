// Package proto implements the client/server packet state machine:
// packet kind constants, the handshake, the Query/Data response loop,
// the INSERT phase, and Ping/Cancel/Reset.
package proto

// Client packet kinds, per spec.md §4.6.1.
const (
	ClientHello  = 0
	ClientQuery  = 1
	ClientData   = 2
	ClientCancel = 3
	ClientPing   = 4
)

// Server packet kinds, per spec.md §4.6.1.
const (
	ServerHello                 = 0
	ServerData                  = 1
	ServerException             = 2
	ServerProgress              = 3
	ServerPong                  = 4
	ServerEndOfStream           = 5
	ServerProfileInfo           = 6
	ServerTotals                = 7
	ServerExtremes              = 8
	ServerTablesStatusResponse  = 9
	ServerLog                   = 10
	ServerTableColumns          = 11
	ServerPartUUIDs             = 12
	ServerReadTaskRequest       = 13
	ServerProfileEvents         = 14
)

// Query processing stage, per spec.md §6.
const (
	StageFetchColumns      = 0
	StageWithMergeableState = 1
	StageComplete          = 2
)

// Compression negotiation flag carried in the Query packet.
const (
	CompressionDisabled uint64 = 0
	CompressionEnabled  uint64 = 1
)

// ClientRevision is the minimum implemented client protocol revision;
// every revision-gated field below this threshold is assumed absent.
const ClientRevision = 54448

// Revision thresholds gating optional fields, per spec.md §4.6.2/§4.6.3/§6.
const (
	RevisionWithClientInfo       = 54032
	RevisionWithServerTimezone   = 54058
	RevisionWithQuotaKey         = 54060
	RevisionWithDisplayName      = 54372
	RevisionWithInterserverSecret = 54441
	RevisionWithOpenTelemetry    = 54442
)

// gated reports whether a revision-gated field is present given the
// negotiated (minimum of client and server) revision.
func gated(negotiated, threshold int) bool {
	return negotiated >= threshold
}
