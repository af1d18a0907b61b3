package cart

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

// Store couples a Cart with durable local storage. Every mutation goes
// through the pure Cart transition first, then the new state is written to
// disk. The transition logic itself stays storage-free and independently
// testable.
type Store struct {
	path string
	cart *Cart
	log  *logrus.Logger
}

// DefaultPath is the cart location for the CLI: a dotfile directory under
// the user's home.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".storefront", "cart.json"), nil
}

// NewStore rehydrates the cart from path. A missing, unreadable or corrupt
// file yields an empty cart rather than an error.
func NewStore(path string, logger *logrus.Logger) *Store {
	s := &Store{
		path: path,
		cart: New(),
		log:  logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warnf("Could not read cart file %s, starting with empty cart: %v", path, err)
		}
		return s
	}

	var loaded Cart
	if err := json.Unmarshal(data, &loaded); err != nil {
		logger.Warnf("Cart file %s is corrupt, resetting to empty cart: %v", path, err)
		return s
	}
	if loaded.Items == nil {
		loaded.Items = []Item{}
	}
	// Recompute rather than trust stored totals.
	loaded.recalculate()
	s.cart = &loaded
	return s
}

func (s *Store) Cart() *Cart {
	return s.cart
}

func (s *Store) Add(product domain.Product) error {
	s.cart.Add(product)
	return s.save()
}

func (s *Store) Remove(productID int64) error {
	s.cart.Remove(productID)
	return s.save()
}

func (s *Store) SetQuantity(productID int64, quantity int) error {
	s.cart.SetQuantity(productID, quantity)
	return s.save()
}

// Clear empties the cart and removes the backing file.
func (s *Store) Clear() error {
	s.cart.Clear()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Errorf("Failed to remove cart file %s: %v", s.path, err)
		return err
	}
	return nil
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.log.Errorf("Failed to create cart directory for %s: %v", s.path, err)
		return err
	}
	data, err := json.MarshalIndent(s.cart, "", "  ")
	if err != nil {
		s.log.Errorf("Failed to serialize cart: %v", err)
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		s.log.Errorf("Failed to write cart file %s: %v", s.path, err)
		return err
	}
	return nil
}
