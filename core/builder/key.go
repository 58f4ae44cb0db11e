package builder

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/artpar/modelkit/core/descriptor"
)

// KeyAttribute is the attribute name every primary key is installed under.
const KeyAttribute = "id"

// KeyKind selects the shape of the primary key.
type KeyKind string

const (
	// KeyUUID is a string key with a generated default value.
	KeyUUID KeyKind = "uuid"

	// KeySerial is an integer key, auto-incrementing unless disabled.
	KeySerial KeyKind = "serial"
)

type keyConfig struct {
	autoIncrement bool
}

// KeyOption configures SetKey.
type KeyOption func(*keyConfig)

// WithAutoIncrement overrides the serial key's auto-increment behavior
// (true when unspecified). Ignored for UUID keys.
func WithAutoIncrement(v bool) KeyOption {
	return func(cfg *keyConfig) {
		cfg.autoIncrement = v
	}
}

// SetKey installs the primary-key attribute, replacing any previous "id"
// attribute outright.
func (b *Builder) SetKey(kind KeyKind, opts ...KeyOption) *Builder {
	if b.err != nil {
		return b
	}

	cfg := keyConfig{autoIncrement: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch kind {
	case KeyUUID:
		b.desc.Attributes[KeyAttribute] = descriptor.Attribute{
			descriptor.PropType:       descriptor.TypeString,
			descriptor.PropUnique:     true,
			descriptor.PropPrimaryKey: true,
			descriptor.PropDefaultsTo: func() string { return uuid.NewString() },
		}
	case KeySerial:
		b.desc.Attributes[KeyAttribute] = descriptor.Attribute{
			descriptor.PropType:          descriptor.TypeInteger,
			descriptor.PropUnique:        true,
			descriptor.PropPrimaryKey:    true,
			descriptor.PropAutoIncrement: cfg.autoIncrement,
		}
	default:
		return b.fail(fmt.Errorf("set key: unknown key kind %q", kind))
	}

	return b
}
