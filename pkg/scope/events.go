package scope

import "fmt"

// Handler receives an event. src is the component that emitted or
// broadcast it. Returning false stops propagation.
type Handler func(src *Component, args ...any) bool

// On registers h for events of type typ. Handlers run in registration
// order.
func (c *Component) On(typ string, h Handler) *Component {
	if h == nil || c.events == nil {
		return c
	}
	c.events[typ] = append(c.events[typ], h)
	return c
}

// Off removes every handler for typ.
func (c *Component) Off(typ string) *Component {
	delete(c.events, typ)
	return c
}

// Emit schedules delivery of an event to the ancestors of c, nearest
// first. Every handler of a level runs; if any returns false the event
// does not travel further up. Delivery starts at the parent c has when Emit
// is called, even if c is destroyed or moved before the event runs.
func (c *Component) Emit(typ string, args ...any) {
	e := c.engine
	src := c
	first := c.parent
	e.sched.Schedule(func() {
		for p := first; p != nil; p = p.parent {
			handlers := append([]Handler(nil), p.events[typ]...)
			if len(handlers) == 0 {
				continue
			}
			next := true
			for _, h := range handlers {
				if !e.dispatch("emit", p, typ, h, src, args) {
					next = false
				}
			}
			if !next {
				return
			}
		}
	})
}

// Broadcast schedules delivery of an event to the descendants of c, depth
// first in child order. A component with handlers for typ receives the
// event and does not pass it to its own children.
func (c *Component) Broadcast(typ string, args ...any) {
	e := c.engine
	src := c
	e.sched.Schedule(func() {
		e.broadcast(src.Children(), typ, src, args)
	})
}

func (e *Engine) broadcast(comps []*Component, typ string, src *Component, args []any) {
	for _, comp := range comps {
		if comp.state == StateDestroyed {
			continue
		}
		handlers := append([]Handler(nil), comp.events[typ]...)
		if len(handlers) > 0 {
			for _, h := range handlers {
				e.dispatch("broadcast", comp, typ, h, src, args)
			}
			continue
		}
		e.broadcast(comp.Children(), typ, src, args)
	}
}

// dispatch invokes h, treating a panic as a logged failure that lets
// propagation continue.
func (e *Engine) dispatch(kind string, target *Component, typ string, h Handler, src *Component, args []any) (next bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("event handler panicked",
				"component", target.id,
				"name", target.name,
				"event", typ,
				"panic", fmt.Sprint(r),
			)
			next = true
		}
	}()
	e.metrics.dispatched(kind)
	return h(src, args...)
}
