package proto

// ServerInfo is populated at handshake and governs which optional fields
// later packets carry.
type ServerInfo struct {
	Name         string
	VersionMajor uint64
	VersionMinor uint64
	Revision     uint64
	VersionPatch uint64
	Timezone     string // present when Revision >= RevisionWithServerTimezone
	DisplayName  string // present when Revision >= RevisionWithDisplayName
}

// Negotiated returns the effective revision for gating optional fields:
// the minimum of the client's and the server's revision.
func (s ServerInfo) Negotiated() int {
	if int(s.Revision) < ClientRevision {
		return int(s.Revision)
	}
	return ClientRevision
}

// Exception is a chained, immutable snapshot of a server-reported error.
type Exception struct {
	Code       int32
	Name       string
	Message    string
	StackTrace string
	Nested     *Exception
}

// Progress carries the server's running counters for a query in flight.
type Progress struct {
	Rows         uint64
	Bytes        uint64
	TotalRows    uint64
	WrittenRows  uint64 // gated
	WrittenBytes uint64 // gated
}

// ProfileInfo carries end-of-query execution statistics.
type ProfileInfo struct {
	Rows                     uint64
	Blocks                   uint64
	Bytes                    uint64
	AppliedLimit             bool
	RowsBeforeLimit          uint64
	CalculatedRowsBeforeLimit bool
}

// LogRow is one row of a server Log packet.
type LogRow struct {
	Time     uint32
	Severity int8
	QueryID  string
	ThreadID uint64
	Priority int8
	Source   string
	Text     string
}

// ClientInfo is sent with every Query packet once the negotiated revision
// supports it. Fields the caller doesn't populate are sent as their zero
// value, per spec.md §4.6.3 ("emit zeros if unused").
type ClientInfo struct {
	QueryKind       uint8
	InitialUser     string
	InitialQueryID  string
	InitialAddress  string
	Interface       uint8
	OSUser          string
	ClientHostname  string
	ClientName      string
	ClientVersionMajor uint64
	ClientVersionMinor uint64
	ClientRevision  uint64
	ClientVersionPatch uint64
	QuotaKey        string // gated on RevisionWithQuotaKey
	DistributedDepth uint64

	// OpenTelemetry trace context, gated on RevisionWithOpenTelemetry.
	// TraceParent == false means "not present"; when true, TraceID/SpanID
	// are 16/8-byte identifiers and TraceState/TraceFlags follow.
	TraceParent bool
	TraceID     [16]byte
	SpanID      [8]byte
	TraceState  string
	TraceFlags  uint8
}

// QueryKind values, per the native protocol's ClientInfo.query_kind.
const (
	QueryKindNoQuery   uint8 = 0
	QueryKindInitial   uint8 = 1
	QueryKindSecondary uint8 = 2
)

// Interface values, per the native protocol's ClientInfo.interface.
const (
	InterfaceTCP uint8 = 1
)
