package builder

import (
	"testing"

	"github.com/artpar/modelkit/core/descriptor"
)

// TestSetKeyUUID verifies the generated-identifier key shape and that its
// default-value generator produces fresh values
func TestSetKeyUUID(t *testing.T) {
	b := New("user").SetKey(KeyUUID)

	if b.Err() != nil {
		t.Fatalf("unexpected error: %v", b.Err())
	}

	id := attr(t, b, KeyAttribute)
	if id[descriptor.PropType] != descriptor.TypeString {
		t.Errorf("expected string type, got %v", id[descriptor.PropType])
	}
	if id[descriptor.PropUnique] != true {
		t.Error("expected unique=true")
	}
	if id[descriptor.PropPrimaryKey] != true {
		t.Error("expected primaryKey=true")
	}
	if _, ok := id[descriptor.PropAutoIncrement]; ok {
		t.Error("uuid key must not carry autoIncrement")
	}

	gen, ok := id[descriptor.PropDefaultsTo].(func() string)
	if !ok {
		t.Fatalf("defaultsTo is not a generator: %T", id[descriptor.PropDefaultsTo])
	}
	first, second := gen(), gen()
	if first == "" || second == "" {
		t.Error("generator produced an empty value")
	}
	if first == second {
		t.Errorf("generator produced the same value twice: %q", first)
	}
}

// TestSetKeySerial verifies the sequential-identifier key shapes
func TestSetKeySerial(t *testing.T) {
	tests := []struct {
		name     string
		opts     []KeyOption
		expected bool
	}{
		{
			name:     "default auto-increment",
			opts:     nil,
			expected: true,
		},
		{
			name:     "auto-increment disabled",
			opts:     []KeyOption{WithAutoIncrement(false)},
			expected: false,
		},
		{
			name:     "auto-increment explicit",
			opts:     []KeyOption{WithAutoIncrement(true)},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("user").SetKey(KeySerial, tt.opts...)

			if b.Err() != nil {
				t.Fatalf("unexpected error: %v", b.Err())
			}

			id := attr(t, b, KeyAttribute)
			if id[descriptor.PropType] != descriptor.TypeInteger {
				t.Errorf("expected integer type, got %v", id[descriptor.PropType])
			}
			if id[descriptor.PropUnique] != true {
				t.Error("expected unique=true")
			}
			if id[descriptor.PropPrimaryKey] != true {
				t.Error("expected primaryKey=true")
			}
			if id[descriptor.PropAutoIncrement] != tt.expected {
				t.Errorf("expected autoIncrement=%v, got %v", tt.expected, id[descriptor.PropAutoIncrement])
			}
			if _, ok := id[descriptor.PropDefaultsTo]; ok {
				t.Error("serial key must not carry defaultsTo")
			}
		})
	}
}

// TestSetKeyReplaces verifies switching key kinds replaces the previous
// id attribute outright
func TestSetKeyReplaces(t *testing.T) {
	b := New("user").SetKey(KeyUUID).SetKey(KeySerial)

	if b.Err() != nil {
		t.Fatalf("unexpected error: %v", b.Err())
	}

	id := attr(t, b, KeyAttribute)
	if id[descriptor.PropType] != descriptor.TypeInteger {
		t.Errorf("expected integer type after replacement, got %v", id[descriptor.PropType])
	}
	if _, ok := id[descriptor.PropDefaultsTo]; ok {
		t.Error("uuid generator survived key replacement")
	}
}

// TestSetKeyUnknownKind verifies unknown kinds are malformed arguments
func TestSetKeyUnknownKind(t *testing.T) {
	b := New("user").SetKey("composite")

	if b.Err() == nil {
		t.Fatal("expected error for unknown key kind")
	}
}
