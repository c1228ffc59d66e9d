package strata

// ObserverID identifies a subscriber. IDs are never reused, so a stale ID can
// only ever fail to match; it can never address a different observer.
type ObserverID uint64

// observerIDCounter is a plain counter (no atomic: strata is single-threaded).
var observerIDCounter ObserverID

// NextObserverID issues a fresh observer ID.
func NextObserverID() ObserverID {
	observerIDCounter++
	return observerIDCounter
}

// Observer reacts to a change in a Subject it subscribed to.
type Observer interface {
	ObserverID() ObserverID
	OnNotify(from *Subject)
}

type subscription struct {
	id       ObserverID
	observer Observer
}

// Subject holds the non-owning subscriber list of an observable value.
// The zero value is ready to use.
type Subject struct {
	subs []subscription
}

// Subscribe adds o to the subscriber list. Subscribing twice is a no-op.
func (s *Subject) Subscribe(o Observer) {
	id := o.ObserverID()
	for _, sub := range s.subs {
		if sub.id == id {
			return
		}
	}
	s.subs = append(s.subs, subscription{id: id, observer: o})
}

// Unsubscribe removes the subscriber with the given ID and reports whether it
// was present.
func (s *Subject) Unsubscribe(id ObserverID) bool {
	for i, sub := range s.subs {
		if sub.id == id {
			copy(s.subs[i:], s.subs[i+1:])
			s.subs[len(s.subs)-1] = subscription{}
			s.subs = s.subs[:len(s.subs)-1]
			return true
		}
	}
	return false
}

// IsSubscribed reports whether id is on the subscriber list.
func (s *Subject) IsSubscribed(id ObserverID) bool {
	for _, sub := range s.subs {
		if sub.id == id {
			return true
		}
	}
	return false
}

// Observers returns the IDs of all current subscribers in subscription order.
func (s *Subject) Observers() []ObserverID {
	ids := make([]ObserverID, len(s.subs))
	for i, sub := range s.subs {
		ids[i] = sub.id
	}
	return ids
}

// Notify calls OnNotify on every subscriber. Subscribers may unsubscribe
// themselves (or others) during notification.
func (s *Subject) Notify() {
	if len(s.subs) == 0 {
		return
	}
	// Iterate a snapshot so that unsubscription inside OnNotify is safe.
	snapshot := make([]subscription, len(s.subs))
	copy(snapshot, s.subs)
	for _, sub := range snapshot {
		if !s.IsSubscribed(sub.id) {
			continue
		}
		sub.observer.OnNotify(s)
	}
}
