package engine

// Compartment is an independently reconfigurable slot in an extension list.
// Placing content with Of and later issuing Reconfigure effects lets one
// slot be swapped without rebuilding the rest of the configuration.
//
// Identity is pointer identity: a compartment belongs to exactly one live
// editor instance and is stable for that instance's lifetime.
type Compartment struct {
	name string
}

// NewCompartment creates a compartment. The name is used only for
// diagnostics.
func NewCompartment(name string) *Compartment {
	return &Compartment{name: name}
}

// Name returns the diagnostic name given at creation.
func (c *Compartment) Name() string { return c.name }

// compartmentContent places content in a compartment within an extension
// list.
type compartmentContent struct {
	comp  *Compartment
	inner Extension
}

func (compartmentContent) ext() {}

// Of returns an extension placing content in this compartment. Content may
// be Extensions() for an intentionally empty slot.
func (c *Compartment) Of(content Extension) Extension {
	if content == nil {
		content = Extensions()
	}
	return compartmentContent{comp: c, inner: content}
}

// StateEffect describes a compartment reconfiguration carried by a
// transaction. Effects apply atomically with the transaction's changes.
type StateEffect struct {
	// Compartment is the slot being reconfigured.
	Compartment *Compartment

	// Content is the slot's new content.
	Content Extension
}

// Reconfigure builds an effect replacing this compartment's content.
func (c *Compartment) Reconfigure(content Extension) StateEffect {
	if content == nil {
		content = Extensions()
	}
	return StateEffect{Compartment: c, Content: content}
}
