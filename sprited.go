/*
Package sprited is a library for editing a single MakeCode Arcade sprite with
an external editor.

It keeps the sprite in the packed interchange format, mirrors changes made in
the editor, applies rotate and flip transforms and persists the result to a
key-value store.
*/
package sprited

import (
	"encoding/json"
	"log"

	"github.com/bodgit/sprited/jres"
	"github.com/pkg/errors"
)

// StorageKey is the key the sprite record is stored under
const StorageKey = "SPRITE_DATA"

// Load returns the stored sprite record. Any problem reading or decoding it
// is logged and the built-in default is returned instead.
func Load(store Store, logger *log.Logger) *jres.Image {
	b, err := store.Get(StorageKey)
	switch {
	case errors.Is(err, ErrNotFound):
		return jres.Default()
	case err != nil:
		logger.Printf("Storage unavailable, using default sprite: %v\n", err)
		return jres.Default()
	}

	var item jres.Image
	if err := json.Unmarshal(b, &item); err != nil {
		logger.Printf("Stored sprite is corrupt, using default sprite: %v\n", err)
		return jres.Default()
	}
	if err := item.Validate(); err != nil {
		logger.Printf("Stored sprite is invalid, using default sprite: %v\n", err)
		return jres.Default()
	}

	return &item
}

// Save replaces the stored sprite record with item.
func Save(store Store, item *jres.Image) error {
	b, err := json.Marshal(item)
	if err != nil {
		return err
	}
	if err := store.Set(StorageKey, b); err != nil {
		return errors.Wrap(err, "saving sprite")
	}
	return nil
}
