// Package handlers provides ready-made lifecycle handlers for common model
// concerns: secret hashing, timestamp stamping and identifier generation.
package handlers

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/artpar/modelkit/core/descriptor"
	"github.com/artpar/modelkit/core/lifecycle"
)

// Clock returns the current time. Tests substitute a fixed one.
type Clock func() time.Time

// HashAttribute returns a handler that bcrypts the named instance
// attribute before the framework persists it. Hashing runs off the
// dispatch goroutine: the handler adopts the continuation and completes
// once the hash is ready. Missing or empty values are left alone.
//
// A cost of 0 selects bcrypt.DefaultCost.
func HashAttribute(attr string, cost int) lifecycle.Handler {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return func(instance map[string]any, next descriptor.Continuation, assume func()) {
		raw, ok := instance[attr]
		if !ok || raw == nil {
			return
		}

		plain, ok := raw.(string)
		if !ok {
			next(fmt.Errorf("hash attribute %q: value is not a string", attr))
			return
		}
		if plain == "" {
			return
		}

		assume()
		go func() {
			hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
			if err != nil {
				next(fmt.Errorf("hash attribute %q: %w", attr, err))
				return
			}
			instance[attr] = string(hash)
			next(nil)
		}()
	}
}

// Timestamps returns a handler that stamps createdAt on first sight of an
// instance and refreshes updatedAt on every trigger. It returns without
// touching the continuation, leaving completion to the dispatcher.
func Timestamps(clock Clock) lifecycle.Handler {
	if clock == nil {
		clock = time.Now
	}

	return func(instance map[string]any, next descriptor.Continuation, assume func()) {
		now := clock().UTC()
		if _, ok := instance["createdAt"]; !ok {
			instance["createdAt"] = now
		}
		instance["updatedAt"] = now
	}
}

// GenerateID returns a handler that fills a missing identifier attribute
// with a new UUID and finishes synchronously through the continuation.
func GenerateID(attr string) lifecycle.Handler {
	return func(instance map[string]any, next descriptor.Continuation, assume func()) {
		if v, ok := instance[attr]; !ok || v == nil || v == "" {
			instance[attr] = uuid.NewString()
		}
		next(nil)
	}
}
