// Package records persists users and email account records as keyed
// documents. Account documents live under the owner-qualified key
// "{ownerID}_{recordID}" so that two owners can hold records with the
// same record id without colliding. Passwords pass through the codec
// on the way in and out; plaintext never reaches the store.
//
// The underlying store has no query-by-field operation, so loading an
// owner's records lists the whole collection and filters here.
package records

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ogrebenko/mailkeep/internal/codec"
	"github.com/ogrebenko/mailkeep/internal/docstore"
	"github.com/ogrebenko/mailkeep/internal/models"
)

const (
	// UsersCollection holds one document per identity.
	UsersCollection = "users"
	// AccountsCollection holds one document per email account record.
	AccountsCollection = "account-records"

	// fallbackPassword substitutes a user password that cannot be
	// decoded from its stored document.
	fallbackPassword = "123456"
)

// Key builds the owner-qualified document key for an account record.
func Key(ownerID, recordID string) string {
	return ownerID + "_" + recordID
}

// Store reads and writes users and account records through a generic
// keyed-document store.
type Store struct {
	docs docstore.Store
	log  *zap.Logger
}

// New constructs a Store over the given document store.
func New(docs docstore.Store, log *zap.Logger) *Store {
	return &Store{docs: docs, log: log}
}

// SaveUser upserts the identity document for user. The password is
// stored encoded.
func (s *Store) SaveUser(ctx context.Context, user models.User) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	fields := docstore.Fields{
		"id":            user.ID,
		"username":      user.Username,
		"encodedSecret": codec.Encode(user.Password),
		"createdAt":     now,
		"updatedAt":     now,
	}
	if err := s.docs.PutKeyed(ctx, UsersCollection, user.ID, fields); err != nil {
		return fmt.Errorf("save user %s: %w", user.ID, err)
	}
	return nil
}

// LoadUser fetches the identity document for ownerID. It returns
// (nil, nil) when no document exists. A stored password that cannot
// be decoded is replaced with the fallback rather than failing the
// load.
func (s *Store) LoadUser(ctx context.Context, ownerID string) (*models.User, error) {
	fields, err := s.docs.GetKeyed(ctx, UsersCollection, ownerID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", ownerID, err)
	}
	password, ok := codec.Decode(str(fields["encodedSecret"]))
	if !ok {
		s.log.Warn("user password unrecoverable, using fallback", zap.String("owner", ownerID))
		password = fallbackPassword
	}
	return &models.User{
		ID:       str(fields["id"]),
		Username: str(fields["username"]),
		Password: password,
	}, nil
}

// SaveAccount upserts the document for one account record, fully
// overwriting any previous version.
func (s *Store) SaveAccount(ctx context.Context, ownerID string, acc models.EmailAccount) error {
	if err := s.docs.PutKeyed(ctx, AccountsCollection, Key(ownerID, acc.ID), accountFields(ownerID, acc, -1)); err != nil {
		return fmt.Errorf("save account %s: %w", acc.ID, err)
	}
	return nil
}

// DeleteAccount removes the document for the record with id owned by
// ownerID.
func (s *Store) DeleteAccount(ctx context.Context, ownerID, id string) error {
	if err := s.docs.DeleteKeyed(ctx, AccountsCollection, Key(ownerID, id)); err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	return nil
}

// LoadAccounts returns every account record owned by ownerID, sorted
// by creation time ascending. Documents belonging to other owners are
// filtered out here since the store cannot do it. A record whose
// password cannot be decoded is kept with an empty password; one bad
// record does not abort the load.
func (s *Store) LoadAccounts(ctx context.Context, ownerID string) ([]models.EmailAccount, error) {
	docs, err := s.docs.ListAll(ctx, AccountsCollection)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	accounts := make([]models.EmailAccount, 0, len(docs))
	for _, doc := range docs {
		if str(doc.Fields["ownerId"]) != ownerID {
			continue
		}
		password, ok := codec.Decode(str(doc.Fields["encodedSecret"]))
		if !ok {
			s.log.Warn("account password unrecoverable, keeping record with empty password",
				zap.String("key", doc.Key))
			password = ""
		}
		accounts = append(accounts, models.EmailAccount{
			ID:        str(doc.Fields["id"]),
			Email:     str(doc.Fields["emailAddress"]),
			Password:  password,
			Uses:      strSlice(doc.Fields["tags"]),
			CreatedAt: parseTime(str(doc.Fields["createdAt"])),
			UpdatedAt: parseTime(str(doc.Fields["updatedAt"])),
		})
	}

	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

// SaveAll replaces every stored record of ownerID with accounts: it
// deletes the owner's existing documents, then writes one document
// per record tagged with its positional order. The two phases are not
// transactional; a failure in between can leave a partial set.
func (s *Store) SaveAll(ctx context.Context, ownerID string, accounts []models.EmailAccount) error {
	docs, err := s.docs.ListAll(ctx, AccountsCollection)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	for _, doc := range docs {
		if str(doc.Fields["ownerId"]) != ownerID {
			continue
		}
		if err := s.docs.DeleteKeyed(ctx, AccountsCollection, doc.Key); err != nil {
			return fmt.Errorf("clear account %s: %w", doc.Key, err)
		}
	}
	for i, acc := range accounts {
		if err := s.docs.PutKeyed(ctx, AccountsCollection, Key(ownerID, acc.ID), accountFields(ownerID, acc, i)); err != nil {
			return fmt.Errorf("save account %s: %w", acc.ID, err)
		}
	}
	return nil
}

// WipeAll deletes every document in both collections, for every
// owner. Deletion continues past individual failures so one bad
// document does not shield the rest; the first error is reported.
func (s *Store) WipeAll(ctx context.Context) error {
	var firstErr error
	for _, collection := range []string{UsersCollection, AccountsCollection} {
		docs, err := s.docs.ListAll(ctx, collection)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("list %s: %w", collection, err)
			}
			continue
		}
		for _, doc := range docs {
			if err := s.docs.DeleteKeyed(ctx, collection, doc.Key); err != nil {
				s.log.Error("wipe: delete failed",
					zap.String("collection", collection),
					zap.String("key", doc.Key),
					zap.Error(err))
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	return firstErr
}

// accountFields builds the wire document for one record. order is
// written only when non-negative; the single-record save paths do not
// carry a position.
func accountFields(ownerID string, acc models.EmailAccount, order int) docstore.Fields {
	fields := docstore.Fields{
		"id":            acc.ID,
		"ownerId":       ownerID,
		"emailAddress":  acc.Email,
		"encodedSecret": codec.Encode(acc.Password),
		"tags":          acc.Uses,
		"createdAt":     acc.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt":     acc.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if order >= 0 {
		fields["order"] = order
	}
	return fields
}

// str reads a string field, tolerating absent or differently typed
// values from hand-edited or legacy documents.
func str(v any) string {
	s, _ := v.(string)
	return s
}

// strSlice reads a string-sequence field. JSON decoding yields
// []any, direct writes through the memory store yield []string.
func strSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		out := make([]string, len(vv))
		copy(out, vv)
		return out
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			out = append(out, str(e))
		}
		return out
	}
	return []string{}
}

// parseTime decodes an ISO timestamp, returning the zero time for
// malformed values instead of failing the record.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
