// Package scope is the binding and rendering core of vbind.
//
// Every UI unit is a Component: a view, a model, and nested child
// components. Templates embed expressions such as
//
//	<p class="{{ state }}">{{ user.name | upper }}</p>
//	<div>{{{ body }}}</div>
//
// Each variable in an expression is owned by the nearest component, walking
// up the parent chain, whose model defines it. Rendering recomputes every
// expression node of a component and its descendants, caching values per
// pass, and writes the results into the view. Raw-markup expressions
// ({{{ }}}) materialize an anonymous sub-component from the value.
//
// Components move through a fixed lifecycle:
//
//	created -> inited -> displayed <-> suspend
//	   any state -> destroyed (or back to created through the pool)
//
// Events travel up the tree with Emit and down with Broadcast. Delivery is
// deferred onto the engine's Scheduler.
//
// An Engine and its components are not safe for concurrent use. Callers
// that share an engine between goroutines must serialize access.
package scope
