package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the backend for snapshot and history storage.
	DatabaseBackend string

	// Operation names a contact store operation.
	Operation string

	// Source tells where the current contact list came from.
	Source string

	// ResyncStrategy is how a mutation brings the local cache back in line with the remote.
	ResyncStrategy string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis"
	MemoryBackend     DatabaseBackend = "memory"
	NoneBackend       DatabaseBackend = "none"
)

// All contact store operations.
const (
	LoadOp       Operation = "load"
	GetOp        Operation = "get"
	CreateOp     Operation = "create"
	UpdateOp     Operation = "update"
	DeleteOp     Operation = "delete"
	InvalidateOp Operation = "invalidate"
)

// Where the contact list was read from.
const (
	NoSource       Source = ""
	SnapshotSource Source = "snapshot"
	RemoteSource   Source = "remote"
)

// Resync strategies used after a successful mutation.
const (
	RefetchAll  ResyncStrategy = "refetch-all"
	LocalFilter ResyncStrategy = "local-filter"
)

// DefaultBaseURL is the remote contact service used when none is configured.
const DefaultBaseURL = "https://contact.herokuapp.com"

// DefaultSnapshotKey is the slot holding the serialized contact list.
const DefaultSnapshotKey = "contacts"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidCacheBackends lists all valid snapshot backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	MemoryBackend:     {},
	NoneBackend:       {},
}

// ValidHistoryBackends lists all valid history backends.
var ValidHistoryBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// StrategyFor returns the resync strategy applied after a successful mutation.
func StrategyFor(op Operation) ResyncStrategy {
	if op == DeleteOp {
		return LocalFilter
	}
	return RefetchAll
}
