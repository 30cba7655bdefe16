package coro

type (
	// BuildFunc constructs a fresh task for a thread slot. The target is the
	// system under test; the id must be round-unique.
	BuildFunc func(target any, threadID, taskID int) *Task

	// Builder is a named task factory. Builders are registered once at
	// process initialization and immutable afterwards.
	Builder struct {
		name  string
		build BuildFunc
	}
)

// NewBuilder names a task factory.
func NewBuilder(name string, build BuildFunc) Builder {
	return Builder{name: name, build: build}
}

// Name returns the method name tasks of this builder execute.
func (b Builder) Name() string { return b.name }

// Build constructs a task against target for the given thread slot.
func (b Builder) Build(target any, threadID, taskID int) *Task {
	return b.build(target, threadID, taskID)
}
