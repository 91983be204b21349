package graph

// MirroredCards returns one wrapper per rendering context of the object.
//
// An object in no reference list is rendered once, by itself. Otherwise it is
// rendered under every rendering of every list container holding it. Containment
// is acyclic, so the recursion terminates. Diamonds yield one wrapper per path.
func (w *Wrapper) MirroredCards() []*Wrapper {
	containers := w.store.ListContainers(w.ID())
	if len(containers) == 0 {
		return []*Wrapper{w}
	}

	ret := []*Wrapper{}
	for _, c := range containers {
		for _, cm := range w.store.wrap(c).MirroredCards() {
			mirror := w.store.wrap(w.object)
			mirror.SetListContainer(cm)
			ret = append(ret, mirror)
		}
	}
	return ret
}

// MirroredWebIDs lists WebIDs of MirroredCards.
func (w *Wrapper) MirroredWebIDs() []string {
	cards := w.MirroredCards()
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.WebID()
	}
	return ids
}
