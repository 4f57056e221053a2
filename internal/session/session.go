// Package session holds the authoritative in-memory application
// state: the logged-in user and the ordered list of email account
// records. Every mutation is applied to memory synchronously, then
// mirrored to the remote record store by a detached best-effort
// write whose failure is logged and never surfaced to the caller.
// The bulk load path runs to completion and replaces memory
// wholesale.
package session

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ogrebenko/mailkeep/internal/models"
	"github.com/ogrebenko/mailkeep/internal/records"
)

// The single valid identity. A stand-in for a real auth backend.
const (
	adminUsername = "admin"
	adminPassword = "123456"

	// DefaultOwner is the owner id tried by the startup load before
	// anyone has logged in.
	DefaultOwner = "admin"
)

// Manager owns the session state and orchestrates persistence. All
// exported methods are safe for concurrent use; in-memory changes are
// observable as soon as the mutating call returns.
type Manager struct {
	store *records.Store
	log   *zap.Logger

	mu       sync.Mutex
	user     *models.User
	accounts []models.EmailAccount
	subs     []func()

	// tails chains in-flight writes per record id so the remote store
	// receives them in issue order.
	tailMu sync.Mutex
	tails  map[string]chan struct{}
	wg     sync.WaitGroup
}

// NewManager creates a Manager with an empty, unauthenticated
// session.
func NewManager(store *records.Store, log *zap.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log,
		tails: make(map[string]chan struct{}),
	}
}

// Subscribe registers fn to run after every state change. Intended
// for UI re-render triggers; fn must not call back into the Manager's
// mutating operations.
func (m *Manager) Subscribe(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Manager) notify() {
	m.mu.Lock()
	subs := make([]func(), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// CurrentUser returns a copy of the logged-in user, or nil.
func (m *Manager) CurrentUser() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// IsAuthenticated reports whether a user is logged in.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil
}

// Accounts returns a copy of the in-memory record list in its
// current order.
func (m *Manager) Accounts() []models.EmailAccount {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.EmailAccount, len(m.accounts))
	for i, acc := range m.accounts {
		out[i] = acc
		out[i].Uses = append([]string(nil), acc.Uses...)
	}
	return out
}

// Login authenticates against the hard-coded identity. On success it
// sets the current user and fires a best-effort save of the identity
// document; the returned result reflects only the credential check,
// never the persistence outcome.
func (m *Manager) Login(username, password string) bool {
	if username != adminUsername || password != adminPassword {
		return false
	}
	user := models.User{ID: adminUsername, Username: username, Password: password}

	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()
	m.notify()

	m.bestEffort("save user", user.ID, func(ctx context.Context) error {
		return m.store.SaveUser(ctx, user)
	})
	return true
}

// Logout clears the user and record list from memory. The remote
// store is left untouched.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.user = nil
	m.accounts = nil
	m.mu.Unlock()
	m.notify()
}

// AddAccount creates a record with a fresh id and current timestamps,
// appends it to the in-memory list, and fires a best-effort save of
// its document. The returned record is the caller's copy.
func (m *Manager) AddAccount(email, password string, uses []string) models.EmailAccount {
	now := time.Now()
	acc := models.EmailAccount{
		ID:        newID(),
		Email:     email,
		Password:  password,
		Uses:      append([]string(nil), uses...),
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.accounts = append(m.accounts, acc)
	acc = m.snapshotLocked(len(m.accounts) - 1)
	owner := m.ownerLocked()
	m.mu.Unlock()
	m.notify()

	m.persistAccount(owner, acc)
	return acc
}

// UpdateAccount merges the non-nil fields of upd into the record with
// the given id, refreshes its UpdatedAt, and fires a best-effort full
// overwrite of its document. An unknown id is a no-op.
func (m *Manager) UpdateAccount(id string, upd models.EmailAccountUpdate) {
	m.mu.Lock()
	i := m.indexLocked(id)
	if i < 0 {
		m.mu.Unlock()
		return
	}
	if upd.Email != nil {
		m.accounts[i].Email = *upd.Email
	}
	if upd.Password != nil {
		m.accounts[i].Password = *upd.Password
	}
	if upd.Uses != nil {
		m.accounts[i].Uses = append([]string(nil), (*upd.Uses)...)
	}
	m.accounts[i].UpdatedAt = time.Now()
	acc := m.snapshotLocked(i)
	owner := m.ownerLocked()
	m.mu.Unlock()
	m.notify()

	m.persistAccount(owner, acc)
}

// RemoveAccount drops the record from memory and fires a best-effort
// delete of its document. An unknown id is a no-op.
func (m *Manager) RemoveAccount(id string) {
	m.mu.Lock()
	i := m.indexLocked(id)
	if i < 0 {
		m.mu.Unlock()
		return
	}
	m.accounts = append(m.accounts[:i], m.accounts[i+1:]...)
	owner := m.ownerLocked()
	m.mu.Unlock()
	m.notify()

	m.bestEffort("delete account", id, func(ctx context.Context) error {
		return m.store.DeleteAccount(ctx, owner, id)
	})
}

// AddUse appends a usage label to the record's label sequence and
// persists the record. Duplicates are allowed; insertion order is
// kept.
func (m *Manager) AddUse(id, use string) {
	m.mu.Lock()
	i := m.indexLocked(id)
	if i < 0 {
		m.mu.Unlock()
		return
	}
	m.accounts[i].Uses = append(m.accounts[i].Uses, use)
	m.accounts[i].UpdatedAt = time.Now()
	acc := m.snapshotLocked(i)
	owner := m.ownerLocked()
	m.mu.Unlock()
	m.notify()

	m.persistAccount(owner, acc)
}

// RemoveUse drops every exact match of use from the record's label
// sequence and persists the record. A label that is not present is a
// no-op.
func (m *Manager) RemoveUse(id, use string) {
	m.mu.Lock()
	i := m.indexLocked(id)
	if i < 0 {
		m.mu.Unlock()
		return
	}
	kept := m.accounts[i].Uses[:0:0]
	for _, u := range m.accounts[i].Uses {
		if u != use {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(m.accounts[i].Uses) {
		m.mu.Unlock()
		return
	}
	m.accounts[i].Uses = kept
	m.accounts[i].UpdatedAt = time.Now()
	acc := m.snapshotLocked(i)
	owner := m.ownerLocked()
	m.mu.Unlock()
	m.notify()

	m.persistAccount(owner, acc)
}

// WipeAll deletes every document in both remote collections, then
// clears the in-memory session. Memory is cleared even when some
// deletions fail; orphaned remote documents are a known limitation of
// this path. The first deletion error is returned for reporting.
func (m *Manager) WipeAll(ctx context.Context) error {
	err := m.store.WipeAll(ctx)
	if err != nil {
		m.log.Error("wipe left remote documents behind", zap.Error(err))
	}

	m.mu.Lock()
	m.user = nil
	m.accounts = nil
	m.mu.Unlock()
	m.notify()
	return err
}

// Resync re-runs the full load for the current owner (or the default
// owner when logged out), replacing in-memory state wholesale.
func (m *Manager) Resync(ctx context.Context) {
	m.mu.Lock()
	owner := m.ownerLocked()
	m.mu.Unlock()
	m.LoadAll(ctx, owner)
}

// LoadAll fetches the identity document and every record owned by
// ownerID, then replaces the in-memory session with the result. Read
// failures degrade to an empty result rather than propagating: a
// transient store error presents as an empty account list, which is a
// documented limitation. When no identity document exists the session
// is left unauthenticated.
func (m *Manager) LoadAll(ctx context.Context, ownerID string) {
	user, err := m.store.LoadUser(ctx, ownerID)
	if err != nil {
		m.log.Error("load user failed", zap.String("owner", ownerID), zap.Error(err))
		user = nil
	}

	accounts, err := m.store.LoadAccounts(ctx, ownerID)
	if err != nil {
		m.log.Error("load accounts failed", zap.String("owner", ownerID), zap.Error(err))
		accounts = nil
	}

	m.mu.Lock()
	m.user = user
	m.accounts = accounts
	m.mu.Unlock()
	m.notify()

	m.log.Info("session loaded",
		zap.String("owner", ownerID),
		zap.Bool("authenticated", user != nil),
		zap.Int("accounts", len(accounts)))
}

// SaveAll persists the identity document and rewrites every record
// document for the current owner in one pass, tagging records with
// their positional order. It waits for completion and reports
// failure, unlike the per-record mutating paths.
func (m *Manager) SaveAll(ctx context.Context) error {
	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return nil
	}
	user := *m.user
	accounts := make([]models.EmailAccount, len(m.accounts))
	copy(accounts, m.accounts)
	m.mu.Unlock()

	if err := m.store.SaveUser(ctx, user); err != nil {
		return err
	}
	return m.store.SaveAll(ctx, user.ID, accounts)
}

// Wait blocks until every detached best-effort write issued so far
// has finished. Used on shutdown and by tests.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// persistAccount fires the best-effort document write for one record.
func (m *Manager) persistAccount(owner string, acc models.EmailAccount) {
	m.bestEffort("save account", acc.ID, func(ctx context.Context) error {
		return m.store.SaveAccount(ctx, owner, acc)
	})
}

// bestEffort runs fn on a detached goroutine. Writes that share a
// record id are chained so they reach the store in the order the
// mutations were applied; the payload itself is snapshotted by the
// caller before this returns, so a later mutation can never leak into
// an earlier write. Errors are logged, never returned.
func (m *Manager) bestEffort(op, recordID string, fn func(ctx context.Context) error) {
	m.tailMu.Lock()
	prev := m.tails[recordID]
	done := make(chan struct{})
	m.tails[recordID] = done
	m.tailMu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			close(done)
			m.tailMu.Lock()
			if m.tails[recordID] == done {
				delete(m.tails, recordID)
			}
			m.tailMu.Unlock()
		}()
		if prev != nil {
			<-prev
		}
		if err := fn(context.Background()); err != nil {
			m.log.Error("best-effort write failed",
				zap.String("op", op),
				zap.String("record", recordID),
				zap.Error(err))
		}
	}()
}

// ownerLocked resolves the owner id for persistence. Callers must
// hold mu.
func (m *Manager) ownerLocked() string {
	if m.user != nil {
		return m.user.ID
	}
	return DefaultOwner
}

// indexLocked finds the record with id, or -1. Callers must hold mu.
func (m *Manager) indexLocked(id string) int {
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			return i
		}
	}
	return -1
}

// snapshotLocked copies the record at i for use outside the lock.
// Callers must hold mu.
func (m *Manager) snapshotLocked(i int) models.EmailAccount {
	acc := m.accounts[i]
	acc.Uses = append([]string(nil), acc.Uses...)
	return acc
}

// newID builds a creation-time-ordered record id: a millisecond
// timestamp with a short random suffix against same-instant
// collisions.
func newID() string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + suffix
}
