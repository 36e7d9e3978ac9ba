package session

import "time"

// Persistent store keys.
const (
	KeyTntID             = "TNT_ID"
	KeyThirdPartyID      = "THIRD_PARTY_ID"
	KeyEdgeHost          = "EDGE_HOST"
	KeySessionID         = "SESSION_ID"
	KeySessionTimestamp  = "SESSION_TIMESTAMP"
	KeyMigrationComplete = "V5_MIGRATION_COMPLETE"
)

// DefaultTimeout is the session window used when none is configured.
const DefaultTimeout = 30 * time.Minute

// PrivacyStatus gates identity capture and outbound requests.
type PrivacyStatus string

const (
	PrivacyOptedIn  PrivacyStatus = "optedin"
	PrivacyOptedOut PrivacyStatus = "optedout"
	PrivacyUnknown  PrivacyStatus = "unknown"
)

// ParsePrivacyStatus maps configuration text to a status; anything
// unrecognised is unknown.
func ParsePrivacyStatus(s string) PrivacyStatus {
	switch PrivacyStatus(s) {
	case PrivacyOptedIn, PrivacyOptedOut:
		return PrivacyStatus(s)
	default:
		return PrivacyUnknown
	}
}
