// Package todo holds the task list and the transitions allowed on it.
//
// A task list is an ordered sequence of tasks in insertion order:
//
//	[
//	  {
//	    "id": 1718000000000,
//	    "title": "Buy milk",
//	    "description": "2%",
//	    "completed": false
//	  }
//	]
//
// # Transitions
//
// Only three transitions exist, each returning a new list and whether the
// list changed:
//
//   - Add appends a task with a fresh id. Blank titles are rejected.
//   - Toggle flips the completed flag of one task.
//   - Delete removes one task.
//
// Toggle and Delete on an unknown id leave the list unchanged. No transition
// edits a title or description after creation, and no transition reorders.
//
// # Store
//
// Store wraps a List for the hosting shell. It owns the id generator and
// notifies subscribed listeners (persistence, journal, hooks, the view) after
// every transition that changed the list. A Store is meant to be driven from
// a single goroutine.
package todo
