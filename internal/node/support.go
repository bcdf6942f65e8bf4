package node

import (
	"activeexpr.dev/go/internal/canon"
	"activeexpr.dev/go/internal/notify"
)

// canonEqual re-exposes the value-equality rule used for cache/structural
// equality (C2) so nodes can decide whether a replaced value actually
// differs before disposing the previous one (§4.5.3, §4.5.4).
func canonEqual(a, b any) bool { return canon.ValueEqual(a, b) }

// sourceNotifier reports whether target implements notify.PropertyNotifier.
func sourceNotifier(target any) (notify.PropertyNotifier, bool) {
	if target == nil {
		return nil, false
	}
	n, ok := target.(notify.PropertyNotifier)
	return n, ok
}

// collectionNotifier reports whether target implements
// notify.CollectionNotifier.
func collectionNotifier(target any) (notify.CollectionNotifier, bool) {
	if target == nil {
		return nil, false
	}
	n, ok := target.(notify.CollectionNotifier)
	return n, ok
}
