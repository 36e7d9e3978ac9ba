package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/kbukum/deliverykit/kvstore"
	"github.com/kbukum/deliverykit/logger"
)

var errMissingStore = errors.New("session: store is required")

// LegacyMigrator copies state written by a previous storage layout into dst.
type LegacyMigrator interface {
	Migrate(ctx context.Context, dst kvstore.Store) error
}

// LegacyKeys maps legacy store keys to their current names.
var LegacyKeys = map[string]string{
	"visitor.tnt_id":         KeyTntID,
	"visitor.third_party_id": KeyThirdPartyID,
	"delivery.edge_host":     KeyEdgeHost,
	"session.id":             KeySessionID,
	"session.last_activity":  KeySessionTimestamp,
}

// KeyMigrator moves LegacyKeys from one store to another. Empty values and a
// zero timestamp are not copied; every legacy key is deleted afterwards.
type KeyMigrator struct {
	Legacy kvstore.Store
}

// Migrate implements LegacyMigrator.
func (m KeyMigrator) Migrate(ctx context.Context, dst kvstore.Store) error {
	if m.Legacy == nil {
		return nil
	}

	var result *multierror.Error
	for legacyKey, key := range LegacyKeys {
		value, ok, err := m.Legacy.Get(ctx, legacyKey)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("read %s: %w", legacyKey, err))
			continue
		}
		value = strings.TrimSpace(value)
		if ok && value != "" && !(key == KeySessionTimestamp && value == "0") {
			if err := dst.Set(ctx, key, value); err != nil {
				result = multierror.Append(result, fmt.Errorf("write %s: %w", key, err))
				continue
			}
		}
		if err := m.Legacy.Remove(ctx, legacyKey); err != nil {
			result = multierror.Append(result, fmt.Errorf("remove %s: %w", legacyKey, err))
		}
	}
	return result.ErrorOrNil()
}

// Migrate runs migrator against store unless the completion flag is set.
// The flag is only written after a migration without errors.
func Migrate(ctx context.Context, store kvstore.Store, migrator LegacyMigrator, log *logger.Logger) error {
	if log == nil {
		log = logger.WithComponent("session")
	}
	if _, done, err := store.Get(ctx, KeyMigrationComplete); err != nil {
		return fmt.Errorf("session: read migration flag: %w", err)
	} else if done {
		return nil
	}

	if err := migrator.Migrate(ctx, store); err != nil {
		return fmt.Errorf("session: legacy migration: %w", err)
	}
	if err := store.Set(ctx, KeyMigrationComplete, "true"); err != nil {
		return fmt.Errorf("session: write migration flag: %w", err)
	}
	log.Debug("legacy storage migrated")
	return nil
}
