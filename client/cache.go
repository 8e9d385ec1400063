package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Identity is the locally cached view of the signed-in user.
type Identity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Approved bool   `json:"approved"`
}

type cacheDocument struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

// Cache persists the session token and user across process restarts.
// A missing or malformed cache file reads as unauthenticated.
type Cache struct {
	mu   sync.Mutex
	path string
}

func NewCache(dir string) *Cache {
	return &Cache{path: filepath.Join(dir, "session.json")}
}

func (c *Cache) Load() (string, Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := os.ReadFile(c.path)
	if err != nil {
		return "", Identity{}, false
	}
	var doc cacheDocument
	if err := json.Unmarshal(raw, &doc); err != nil || doc.Token == "" {
		return "", Identity{}, false
	}
	return doc.Token, doc.User, true
}

func (c *Cache) Save(token string, user Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := json.Marshal(cacheDocument{Token: token, User: user})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
