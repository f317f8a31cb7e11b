package recovery

import "context"

// Hook observes the outcome of every stage the chain runs.
type Hook func(ctx context.Context, r Result)

// ChainOption configures a [Chain].
type ChainOption func(*Chain)

// WithHook registers a hook. Hooks run in registration order.
func WithHook(h Hook) ChainOption {
	return func(c *Chain) {
		if h != nil {
			c.hooks = append(c.hooks, h)
		}
	}
}

// WithoutLibraryRepair disables the jsonrepair stage.
func WithoutLibraryRepair() ChainOption {
	return func(c *Chain) {
		c.libraryRepair = false
	}
}

// Chain runs the recovery stages in order and stops at the first one that
// parses. The scavenger always closes the chain, so Run never fails. A chain
// is immutable and safe for concurrent use.
type Chain struct {
	scavenger     *Scavenger
	hooks         []Hook
	libraryRepair bool
}

// NewChain creates a chain whose scavenger looks for fields. The scavenger
// patterns are compiled here, once.
func NewChain(fields []Field, opts ...ChainOption) *Chain {
	c := &Chain{
		scavenger:     NewScavenger(fields),
		libraryRepair: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fields returns the fields the scavenger looks for.
func (c *Chain) Fields() []Field {
	return c.scavenger.Fields()
}

// Run recovers a mapping from raw. The returned result is always Parsed; its
// Stage tells which step produced it.
func (c *Chain) Run(ctx context.Context, raw string) Result {
	stages := []func(string) Result{Extract, Repair, FindObject}
	if c.libraryRepair {
		stages = append(stages, LibraryRepair)
	}

	for _, stage := range stages {
		r := stage(raw)
		c.notify(ctx, r)
		if r.Parsed() {
			return r
		}
	}

	r := c.scavenger.Scavenge(raw)
	c.notify(ctx, r)
	return r
}

func (c *Chain) notify(ctx context.Context, r Result) {
	for _, h := range c.hooks {
		h(ctx, r)
	}
}
