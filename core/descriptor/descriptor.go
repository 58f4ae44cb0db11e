package descriptor

// Continuation resumes the framework's processing of an instance.
// A nil error means "proceed"; a non-nil error is handed to the framework
// unchanged.
type Continuation func(err error)

// Callback is the hook signature the framework expects on a descriptor,
// one per lifecycle.
type Callback func(instance map[string]any, next Continuation)

// Attribute maps property names to property values for one model field.
type Attribute map[string]any

// Property names understood by the framework.
const (
	PropType          = "type"
	PropRequired      = "required"
	PropUnique        = "unique"
	PropPrimaryKey    = "primaryKey"
	PropDefaultsTo    = "defaultsTo"
	PropAutoIncrement = "autoIncrement"
	PropMaxLength     = "maxLength"
)

// Attribute type values.
const (
	TypeString   = "string"
	TypeText     = "text"
	TypeInteger  = "integer"
	TypeFloat    = "float"
	TypeBoolean  = "boolean"
	TypeDatetime = "datetime"
	TypeJSON     = "json"
)

// Descriptor is the model under construction and the artifact handed to
// the framework.
type Descriptor struct {
	// Identity is the model's name (e.g., "user").
	Identity string

	// Attributes maps attribute names to either an Attribute property map
	// or a function value.
	Attributes map[string]any

	// Callbacks holds one lifecycle callback per lifecycle name, installed
	// by the dispatcher.
	Callbacks map[Lifecycle]Callback
}

// New creates an empty descriptor for the given identity.
func New(identity string) *Descriptor {
	return &Descriptor{
		Identity:   identity,
		Attributes: make(map[string]any),
		Callbacks:  make(map[Lifecycle]Callback),
	}
}

// EnsureMaps installs empty attribute and callback maps where absent.
// Externally supplied descriptors may arrive with nil maps.
func (d *Descriptor) EnsureMaps() {
	if d.Attributes == nil {
		d.Attributes = make(map[string]any)
	}
	if d.Callbacks == nil {
		d.Callbacks = make(map[Lifecycle]Callback)
	}
}

// Attribute returns the property map stored under name.
// The second result is false when the name is unknown or the stored value
// is not a property map (e.g., a function-valued attribute). Externally
// supplied descriptors hold raw map[string]any values (generic
// unmarshaling produces those), so both map types are recognized; the
// returned Attribute shares the stored map, so writes through it stick.
func (d *Descriptor) Attribute(name string) (Attribute, bool) {
	switch v := d.Attributes[name].(type) {
	case Attribute:
		return v, true
	case map[string]any:
		return Attribute(v), true
	default:
		return nil, false
	}
}

// AttributeNames returns the names of all currently-known attributes,
// including function-valued ones. Order is unspecified.
func (d *Descriptor) AttributeNames() []string {
	names := make([]string, 0, len(d.Attributes))
	for name := range d.Attributes {
		names = append(names, name)
	}
	return names
}
