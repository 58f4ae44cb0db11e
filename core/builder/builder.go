// Package builder provides the fluent attribute store that assembles model
// descriptors.
//
// All mutating methods return the builder so call sites can chain. Go
// fluent chains cannot return an error per call, so the first malformed
// argument is recorded and every later mutation becomes a no-op; Err and
// Export surface it. The original polymorphic attribute setter is split
// into three explicitly named operations: MergeAttributeMap,
// SetAttributeProperty and MergeSharedProperties.
package builder

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/rs/zerolog"

	"github.com/artpar/modelkit/core/descriptor"
	"github.com/artpar/modelkit/core/lifecycle"
)

// Builder assembles a model descriptor and keeps its lifecycle callbacks
// wired to a dispatcher.
type Builder struct {
	desc       *descriptor.Descriptor
	dispatcher *lifecycle.Dispatcher
	logger     zerolog.Logger
	err        error
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used by the builder and, unless overridden,
// its dispatcher.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithDispatcher shares an existing dispatcher instead of creating one.
func WithDispatcher(d *lifecycle.Dispatcher) Option {
	return func(b *Builder) {
		b.dispatcher = d
	}
}

// New creates a builder around a fresh descriptor for the given identity.
func New(identity string, opts ...Option) *Builder {
	b := &Builder{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	if b.dispatcher == nil {
		b.dispatcher = lifecycle.New(b.logger)
	}
	return b.SetModel(descriptor.New(identity))
}

// FromDefinition seeds a builder from a parsed YAML definition.
func FromDefinition(def descriptor.Definition, opts ...Option) *Builder {
	b := New(def.Identity, opts...)

	attrs := make(map[string]any, len(def.Attributes))
	for name, attr := range def.Attributes {
		attrs[name] = attr
	}
	return b.MergeAttributeMap(attrs)
}

// Model returns the descriptor under construction.
func (b *Builder) Model() *descriptor.Descriptor {
	return b.desc
}

// Dispatcher returns the dispatcher wired into the descriptor's lifecycle
// callbacks.
func (b *Builder) Dispatcher() *lifecycle.Dispatcher {
	return b.dispatcher
}

// Err returns the first error recorded by the fluent chain, if any.
func (b *Builder) Err() error {
	return b.err
}

// SetModel replaces the descriptor under construction. A descriptor that
// arrives without an attribute map gets an empty one, and the lifecycle
// callbacks are re-installed on it.
func (b *Builder) SetModel(desc *descriptor.Descriptor) *Builder {
	if b.err != nil {
		return b
	}
	if desc == nil {
		return b.fail(fmt.Errorf("set model: descriptor is nil"))
	}

	desc.EnsureMaps()
	b.dispatcher.Install(desc)
	b.desc = desc
	return b
}

// MarkRequired marks the named attributes required. With no names, every
// currently-known attribute with a property map is marked; function-valued
// attributes are skipped since required is meaningless for them.
func (b *Builder) MarkRequired(names ...string) *Builder {
	if b.err != nil {
		return b
	}

	if len(names) == 0 {
		for _, name := range b.desc.AttributeNames() {
			if _, ok := b.desc.Attribute(name); ok {
				names = append(names, name)
			}
		}
		sort.Strings(names)
	}

	return b.MergeSharedProperties(names, descriptor.Attribute{descriptor.PropRequired: true})
}

// MergeAttributeMap merges a map of attribute name to attribute value into
// the descriptor. A function value replaces whatever is stored under the
// name outright; a property map shallow-merges into the existing attribute,
// creating it if absent. The whole map is validated before anything is
// merged, so a malformed entry leaves the descriptor untouched.
func (b *Builder) MergeAttributeMap(attrs map[string]any) *Builder {
	if b.err != nil {
		return b
	}

	for name, value := range attrs {
		if name == "" {
			return b.fail(fmt.Errorf("merge attributes: empty attribute name"))
		}

		switch value.(type) {
		case descriptor.Attribute, map[string]any:
		default:
			if reflect.ValueOf(value).Kind() != reflect.Func {
				return b.fail(fmt.Errorf("merge attributes: attribute %q is neither a property map nor a function", name))
			}
		}
	}

	for name, value := range attrs {
		switch v := value.(type) {
		case descriptor.Attribute:
			b.mergeInto(name, v)
		case map[string]any:
			b.mergeInto(name, v)
		default:
			b.desc.Attributes[name] = value
		}
	}
	return b
}

// SetAttributeProperty sets one property on one attribute, creating the
// attribute if absent.
func (b *Builder) SetAttributeProperty(name, prop string, value any) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		return b.fail(fmt.Errorf("set attribute property: empty attribute name"))
	}
	if prop == "" {
		return b.fail(fmt.Errorf("set attribute property: empty property name for attribute %q", name))
	}

	stored, ok := b.desc.Attribute(name)
	if !ok {
		if _, exists := b.desc.Attributes[name]; exists {
			return b.fail(fmt.Errorf("set attribute property: attribute %q is function-valued, replace it via MergeAttributeMap", name))
		}
		stored = descriptor.Attribute{}
		b.desc.Attributes[name] = stored
	}

	stored[prop] = value
	return b
}

// MergeSharedProperties shallow-merges one property map into every named
// attribute, creating absent ones. It refuses to touch a function-valued
// attribute: replacing those is the job of MergeAttributeMap. All names
// are validated before anything is merged, so a malformed name leaves the
// descriptor untouched.
func (b *Builder) MergeSharedProperties(names []string, props descriptor.Attribute) *Builder {
	if b.err != nil {
		return b
	}

	for _, name := range names {
		if name == "" {
			return b.fail(fmt.Errorf("merge shared properties: empty attribute name"))
		}

		if _, exists := b.desc.Attributes[name]; exists {
			if _, ok := b.desc.Attribute(name); !ok {
				return b.fail(fmt.Errorf("merge shared properties: attribute %q is function-valued, replace it via MergeAttributeMap", name))
			}
		}
	}

	for _, name := range names {
		b.mergeInto(name, props)
	}
	return b
}

// On subscribes a handler to a lifecycle. The subscription handle is
// available through Dispatcher for callers that need to unsubscribe.
func (b *Builder) On(lc descriptor.Lifecycle, h lifecycle.Handler) *Builder {
	if b.err != nil {
		return b
	}
	if !lc.Valid() {
		return b.fail(fmt.Errorf("subscribe: unknown lifecycle %q", lc))
	}

	b.dispatcher.Subscribe(lc, h)
	return b
}

// Off removes a subscription obtained from the dispatcher.
func (b *Builder) Off(sub lifecycle.Subscription) *Builder {
	b.dispatcher.Unsubscribe(sub)
	return b
}

// Export hands over the finished descriptor, or the first error the chain
// recorded.
func (b *Builder) Export() (*descriptor.Descriptor, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.desc, nil
}

// mergeInto shallow-merges props into the attribute stored under name,
// creating it if absent. Callers have already ruled out function values.
func (b *Builder) mergeInto(name string, props map[string]any) {
	stored, ok := b.desc.Attribute(name)
	if !ok {
		stored = descriptor.Attribute{}
		b.desc.Attributes[name] = stored
	}
	for k, v := range props {
		stored[k] = v
	}
}

func (b *Builder) fail(err error) *Builder {
	identity := ""
	if b.desc != nil {
		identity = b.desc.Identity
	}
	b.logger.Error().Err(err).Str("model", identity).Msg("builder error")
	b.err = err
	return b
}
