// Package notify defines the narrow contracts the engine requires of caller
// supplied source objects (§9 Design notes). The engine never depends on a
// concrete observable-collection implementation; it subscribes through these
// two interfaces only.
package notify

// PropertyNotifier is implemented by a source object that wants Member and
// Index nodes to refresh when one of its fields changes. A conforming type
// calls every registered handler with the changed property's name (or an
// empty name, meaning "any property changed") after the change has taken
// effect; each handler decides for itself whether that name concerns it.
type PropertyNotifier interface {
	// OnPropertyChanged registers fn to run whenever a property changes.
	// The returned func removes the registration; it is safe to call more
	// than once.
	OnPropertyChanged(fn func(name string)) (unsubscribe func())
}

// CollectionChangeKind enumerates the kinds of structural change a
// CollectionNotifier may report.
type CollectionChangeKind uint8

const (
	Added CollectionChangeKind = iota
	Removed
	Replaced
	Moved
	Reset
)

// CollectionChange describes a single structural change to an indexable
// collection. Index is the affected position (or -1 for Reset).
type CollectionChange struct {
	Kind  CollectionChangeKind
	Index int
}

// CollectionNotifier is implemented by a source object indexed by Index
// nodes that wants to report structural changes (§4.5.4). An Index node
// recomputes on every reported change, whatever its Kind and Index.
type CollectionNotifier interface {
	OnCollectionChanged(fn func(CollectionChange)) (unsubscribe func())
}
