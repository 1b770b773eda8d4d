package dockflow

import "errors"

// Common errors.
var (
	// ErrTypeMismatch is returned when a value or a connection does not
	// match the declared dock type.
	ErrTypeMismatch = errors.New("dockflow: type mismatch")

	// ErrNodeNotFound is returned when a referenced node is not part of the graph.
	ErrNodeNotFound = errors.New("dockflow: node not found")

	// ErrDockNotFound is returned when a dock path does not resolve.
	ErrDockNotFound = errors.New("dockflow: dock not found")

	// ErrDuplicateNode is returned when a graph already holds a node with the same name.
	ErrDuplicateNode = errors.New("dockflow: duplicate node name")

	// ErrDuplicateDock is returned when a node already has a dock with the same name.
	ErrDuplicateDock = errors.New("dockflow: duplicate dock name")

	// ErrNodeInGraph is returned when adding a node that already belongs to a graph.
	ErrNodeInGraph = errors.New("dockflow: node already belongs to a graph")

	// ErrDockOwned is returned when adding a dock that already belongs to a node.
	ErrDockOwned = errors.New("dockflow: dock already belongs to a node")

	// ErrDetached is returned when a dock operation needs a graph but the
	// dock is not attached to a node inside one.
	ErrDetached = errors.New("dockflow: dock is not attached to a graph")

	// ErrAlreadyConnected is returned when the connection already exists.
	ErrAlreadyConnected = errors.New("dockflow: docks already connected")

	// ErrNotConnected is returned when disconnecting docks that are not connected.
	ErrNotConnected = errors.New("dockflow: docks not connected")

	// ErrMaxConnections is returned when a dock has no room for another connection.
	ErrMaxConnections = errors.New("dockflow: maximum connections reached")

	// ErrCycle is returned when a connection would close a cycle in a graph
	// that does not allow cycles.
	ErrCycle = errors.New("dockflow: connection would create a cycle")

	// ErrPropagationLimit is reported when a wave exceeds its iteration budget.
	ErrPropagationLimit = errors.New("dockflow: propagation iteration limit exceeded")

	// ErrRevisit is reported when an acyclic wave schedules a node it has
	// already recomputed.
	ErrRevisit = errors.New("dockflow: node recomputed twice in one wave")

	// ErrUnknownAction is returned when a node does not handle the requested action.
	ErrUnknownAction = errors.New("dockflow: unknown action")

	// ErrInconsistent is returned by Validate when the connection table is corrupt.
	ErrInconsistent = errors.New("dockflow: inconsistent graph")
)
