package session

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/deliverykit/kvstore"
	"github.com/kbukum/deliverykit/logger"
	"github.com/kbukum/deliverykit/util"
)

// Options configures a State.
type Options struct {
	// Store persists identity and session fields. Required.
	Store kvstore.Store
	// Migrator copies values from a legacy store once, before hydration.
	Migrator LegacyMigrator
	// Timeout is the session window. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Privacy is the initial privacy status. Defaults to unknown.
	Privacy PrivacyStatus
	// ClientCode is the initial tenant client code.
	ClientCode string
	// Logger defaults to the global logger.
	Logger *logger.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// NewID generates session ids. Defaults to random UUIDs.
	NewID func() string
}

// Snapshot is a consistent copy of the identity and session fields.
type Snapshot struct {
	TntID            string `json:"tntid,omitempty"`
	ThirdPartyID     string `json:"thirdpartyid,omitempty"`
	SessionID        string `json:"sessionid,omitempty"`
	EdgeHost         string `json:"edgehost,omitempty"`
	ClientCode       string `json:"-"`
	SessionTimestamp int64  `json:"-"`
}

// IdentityEqual reports whether the fields published to the host are equal.
func (s Snapshot) IdentityEqual(o Snapshot) bool {
	return s.TntID == o.TntID && s.ThirdPartyID == o.ThirdPartyID &&
		s.SessionID == o.SessionID && s.EdgeHost == o.EdgeHost
}

// State is the identity and session store. It is safe for concurrent use.
type State struct {
	mu    sync.Mutex
	store kvstore.Store
	log   *logger.Logger
	now   func() time.Time
	newID func() string

	tntID            string
	thirdPartyID     string
	clientCode       string
	edgeHost         string
	sessionID        string
	sessionTimestamp int64
	timeout          time.Duration
	privacy          PrivacyStatus
}

// New creates a State hydrated from opts.Store, running the legacy migration
// first when a migrator is supplied and the store has not been migrated yet.
func New(ctx context.Context, opts Options) (*State, error) {
	if opts.Store == nil {
		return nil, errMissingStore
	}
	s := &State{
		store:      opts.Store,
		log:        logger.OrGlobal(opts.Logger, "session"),
		now:        opts.Now,
		newID:      opts.NewID,
		clientCode: strings.TrimSpace(opts.ClientCode),
		timeout:    opts.Timeout,
		privacy:    opts.Privacy,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.privacy == "" {
		s.privacy = PrivacyUnknown
	}

	if opts.Migrator != nil {
		if err := Migrate(ctx, opts.Store, opts.Migrator, s.log); err != nil {
			s.log.Warn("legacy migration failed", logger.ErrorFields("migrate", err))
		}
	}

	s.tntID = s.load(ctx, KeyTntID)
	s.thirdPartyID = s.load(ctx, KeyThirdPartyID)
	s.edgeHost = s.load(ctx, KeyEdgeHost)
	s.sessionID = s.load(ctx, KeySessionID)
	if ts := s.load(ctx, KeySessionTimestamp); ts != "" {
		if v, err := strconv.ParseInt(ts, 10, 64); err == nil {
			s.sessionTimestamp = v
		}
	}
	return s, nil
}

// CurrentSessionID returns the session id, generating and persisting a new
// one when it is absent or the session expired. A new id starts with no
// activity timestamp.
func (s *State) CurrentSessionID(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expiredLocked() {
		s.edgeHost = ""
		s.persist(ctx, KeyEdgeHost, "")
		s.sessionID = ""
	}
	if s.sessionID == "" {
		s.sessionID = s.newID()
		s.persist(ctx, KeySessionID, s.sessionID)
		s.sessionTimestamp = 0
		s.persist(ctx, KeySessionTimestamp, "")
		s.log.Debug("new session", logger.Fields(logger.FieldSessionID, s.sessionID))
	}
	return s.sessionID
}

// CurrentEdgeHost returns the edge host, clearing it when the session expired.
func (s *State) CurrentEdgeHost(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edgeHost != "" && s.expiredLocked() {
		s.log.Debug("edge host expired with session", logger.Fields("edge_host", s.edgeHost))
		s.edgeHost = ""
		s.persist(ctx, KeyEdgeHost, "")
	}
	return s.edgeHost
}

// TouchSession records activity now, or clears the timestamp when reset.
func (s *State) TouchSession(ctx context.Context, reset bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked(ctx, reset)
}

// SetTntID updates the primary visitor id. A blank id clears it. Non-blank
// ids are ignored while opted out, as are ids matching the stored identity.
// Returns true when the stored value changed.
func (s *State) SetTntID(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setIdentityLocked(ctx, KeyTntID, &s.tntID, id, SameIdentity)
}

// SetThirdPartyID updates the caller-supplied identifier under the same rules
// as SetTntID, without base matching.
func (s *State) SetThirdPartyID(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setIdentityLocked(ctx, KeyThirdPartyID, &s.thirdPartyID, id, func(a, b string) bool { return a == b })
}

// SetEdgeHost stores the edge host returned by the endpoint. Returns true on change.
func (s *State) SetEdgeHost(ctx context.Context, host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	host = strings.TrimSpace(host)
	if host == s.edgeHost {
		return false
	}
	s.edgeHost = host
	s.persist(ctx, KeyEdgeHost, host)
	return true
}

// SetSessionID replaces the session id. A blank id clears the session.
func (s *State) SetSessionID(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id = strings.TrimSpace(id)
	if id == s.sessionID {
		return false
	}
	s.sessionID = id
	s.persist(ctx, KeySessionID, id)
	if id == "" {
		s.touchLocked(ctx, true)
	}
	return true
}

// UpdateClientCode sets the tenant client code. A changed code invalidates
// the edge host. Returns true when the code changed.
func (s *State) UpdateClientCode(ctx context.Context, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	code = strings.TrimSpace(code)
	if code == s.clientCode {
		return false
	}
	s.clientCode = code
	if s.edgeHost != "" {
		s.edgeHost = ""
		s.persist(ctx, KeyEdgeHost, "")
		s.log.Debug("client code changed, edge host reset")
	}
	return true
}

// ResetAll clears identity, edge host and session.
func (s *State) ResetAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tntID = ""
	s.persist(ctx, KeyTntID, "")
	s.thirdPartyID = ""
	s.persist(ctx, KeyThirdPartyID, "")
	s.edgeHost = ""
	s.persist(ctx, KeyEdgeHost, "")
	s.sessionID = ""
	s.persist(ctx, KeySessionID, "")
	s.touchLocked(ctx, true)
	s.log.Debug("identity and session reset")
}

// SetPrivacy updates the privacy status.
func (s *State) SetPrivacy(status PrivacyStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.privacy = status
}

// Privacy returns the privacy status.
func (s *State) Privacy() PrivacyStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.privacy
}

// SetTimeout updates the session window; non-positive values restore the default.
func (s *State) SetTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d <= 0 {
		d = DefaultTimeout
	}
	s.timeout = d
}

// Timeout returns the session window.
func (s *State) Timeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeout
}

// ClientCode returns the tenant client code.
func (s *State) ClientCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clientCode
}

// TntID returns the primary visitor id.
func (s *State) TntID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tntID
}

// ThirdPartyID returns the third-party id.
func (s *State) ThirdPartyID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thirdPartyID
}

// Snapshot returns the stored fields as they are, without expiry checks.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		TntID:            s.tntID,
		ThirdPartyID:     s.thirdPartyID,
		SessionID:        s.sessionID,
		EdgeHost:         s.edgeHost,
		ClientCode:       s.clientCode,
		SessionTimestamp: s.sessionTimestamp,
	}
}

// --- internal helpers ---

func (s *State) expiredLocked() bool {
	if s.sessionTimestamp <= 0 {
		return false
	}
	return s.now().Unix()-s.sessionTimestamp > int64(s.timeout/time.Second)
}

func (s *State) touchLocked(ctx context.Context, reset bool) {
	if reset {
		s.sessionTimestamp = 0
		s.persist(ctx, KeySessionTimestamp, "")
		return
	}
	s.sessionTimestamp = s.now().Unix()
	s.persist(ctx, KeySessionTimestamp, strconv.FormatInt(s.sessionTimestamp, 10))
}

func (s *State) setIdentityLocked(ctx context.Context, key string, field *string, id string, same func(a, b string) bool) bool {
	id = strings.TrimSpace(id)
	if id != "" && s.privacy == PrivacyOptedOut {
		s.log.Debug("identity update ignored while opted out", logger.Fields(logger.FieldKey, key))
		return false
	}
	if id == "" && *field == "" {
		return false
	}
	if id != "" && same(*field, id) {
		return false
	}
	*field = id
	s.persist(ctx, key, id)
	s.log.Debug("identity updated", logger.Fields(logger.FieldKey, key, "value", util.MaskSecret(id, 6)))
	return true
}

// persist writes value under key, removing the key for blank values.
// Failures are logged; in-memory state stays authoritative.
func (s *State) persist(ctx context.Context, key, value string) {
	var err error
	if util.IsBlank(value) {
		err = s.store.Remove(ctx, key)
	} else {
		err = s.store.Set(ctx, key, value)
	}
	if err != nil {
		s.log.Warn("persist failed", logger.Fields(logger.FieldKey, key, logger.FieldError, err.Error()))
	}
}

func (s *State) load(ctx context.Context, key string) string {
	v, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Warn("load failed", logger.Fields(logger.FieldKey, key, logger.FieldError, err.Error()))
		return ""
	}
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}
