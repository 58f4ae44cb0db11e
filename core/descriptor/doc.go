/*
Package descriptor defines the model descriptor consumed by the external
data-mapper framework.

A descriptor pairs an attribute map with one lifecycle callback per
extension point. The framework calls each callback with the instance being
processed and a continuation; invoking the continuation tells the framework
to proceed.

A minimal model definition in YAML:

	identity: user

	attributes:
	  email: { type: string, required: true, unique: true }
	  name:  { type: string, maxLength: 45 }

Attribute values in a built descriptor are either a property map
(Attribute) or a function value: instance methods and default-value
generators are stored directly under the attribute name, which is why
Descriptor.Attributes is map[string]any rather than map[string]Attribute.

The eight lifecycle names are fixed by the framework: before/after each of
validate, create, update and destroy.
*/
package descriptor
