package descriptor

// Lifecycle names one of the framework's extension points.
type Lifecycle string

// The eight lifecycles, fixed by the framework.
const (
	BeforeValidate Lifecycle = "beforeValidate"
	AfterValidate  Lifecycle = "afterValidate"
	BeforeCreate   Lifecycle = "beforeCreate"
	AfterCreate    Lifecycle = "afterCreate"
	BeforeUpdate   Lifecycle = "beforeUpdate"
	AfterUpdate    Lifecycle = "afterUpdate"
	BeforeDestroy  Lifecycle = "beforeDestroy"
	AfterDestroy   Lifecycle = "afterDestroy"
)

// Lifecycles returns all lifecycle names in the order the framework
// documents them.
func Lifecycles() []Lifecycle {
	return []Lifecycle{
		BeforeValidate,
		AfterValidate,
		BeforeCreate,
		AfterCreate,
		BeforeUpdate,
		AfterUpdate,
		BeforeDestroy,
		AfterDestroy,
	}
}

// Valid reports whether lc is one of the eight framework lifecycles.
func (lc Lifecycle) Valid() bool {
	switch lc {
	case BeforeValidate, AfterValidate,
		BeforeCreate, AfterCreate,
		BeforeUpdate, AfterUpdate,
		BeforeDestroy, AfterDestroy:
		return true
	}
	return false
}
