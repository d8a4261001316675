// Package settings holds the read-mostly site settings, including the
// install secret every reset token is signed with.
package settings

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync/atomic"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
	"github.com/aussiebroadwan/siteauth/internal/auth/store"
	"github.com/google/uuid"
)

// ErrImmutable is returned when something tries to change the install secret
// of a running process.
var ErrImmutable = errors.New("settings: install secret is immutable at runtime")

// Cache is a copy-on-write snapshot of the settings table. Reads never lock.
type Cache struct {
	values atomic.Pointer[map[string]string]
}

// NewCache builds a cache from a fixed set of values.
func NewCache(values map[string]string) *Cache {
	c := &Cache{}
	snapshot := maps.Clone(values)
	if snapshot == nil {
		snapshot = map[string]string{}
	}
	c.values.Store(&snapshot)
	return c
}

// Load reads every setting once. The install secret must already exist.
func Load(ctx context.Context, st store.Store) (*Cache, error) {
	values, err := st.Settings().ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("settings: load: %w", err)
	}
	if values[domain.SettingInstallSecret] == "" {
		return nil, errors.New("settings: install secret missing")
	}
	return NewCache(values), nil
}

func (c *Cache) Get(key string) (string, bool) {
	v, ok := (*c.values.Load())[key]
	return v, ok
}

// InstallSecret is the signing material shared by every reset token.
func (c *Cache) InstallSecret() string {
	v, _ := c.Get(domain.SettingInstallSecret)
	return v
}

func (c *Cache) Title() string {
	v, _ := c.Get(domain.SettingTitle)
	return v
}

// Set publishes a new snapshot with key replaced. The caller persists first.
func (c *Cache) Set(key, value string) error {
	if key == domain.SettingInstallSecret {
		return ErrImmutable
	}
	for {
		old := c.values.Load()
		next := maps.Clone(*old)
		next[key] = value
		if c.values.CompareAndSwap(old, &next) {
			return nil
		}
	}
}

// EnsureInstallSecret seeds db_hash with a random UUID if it is absent and
// returns the stored value.
func EnsureInstallSecret(ctx context.Context, st store.Store) (string, error) {
	var secret string
	err := st.WithTx(ctx, func(tx store.Tx) error {
		v, err := tx.Settings().GetSetting(ctx, domain.SettingInstallSecret)
		switch {
		case err == nil && v != "":
			secret = v
			return nil
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return err
		}
		secret = uuid.NewString()
		return tx.Settings().SetSetting(ctx, domain.SettingInstallSecret, secret)
	})
	if err != nil {
		return "", fmt.Errorf("settings: ensure install secret: %w", err)
	}
	return secret, nil
}

// RotateInstallSecret replaces db_hash, invalidating every outstanding reset
// token. Running processes keep the old value until restarted.
func RotateInstallSecret(ctx context.Context, st store.Store) (string, error) {
	secret := uuid.NewString()
	if err := st.Settings().SetSetting(ctx, domain.SettingInstallSecret, secret); err != nil {
		return "", fmt.Errorf("settings: rotate install secret: %w", err)
	}
	return secret, nil
}
