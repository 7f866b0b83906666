package diagram

// Diagnostic records a link end that names a box which does not exist.
type Diagnostic struct {
	ID    ID    // the missing box id
	Links []int // indices into Diagram.Links that reference it
}

// Resolved is a diagram whose links have been matched to boxes.
type Resolved struct {
	Diagram *Diagram

	// Boxes indexes Diagram.Nodes by id. Entries point into Diagram.Nodes,
	// so position changes made through them are visible on the next build.
	Boxes map[ID]*Box

	// Links holds the links whose source and target both resolve, in
	// document order.
	Links []Link

	// Diagnostics lists each missing id once, in the order first seen.
	Diagnostics []Diagnostic

	// Skipped counts links dropped because an end did not resolve.
	Skipped int
}

// Resolve matches link ends to boxes. Links with an unknown source or target
// are dropped and reported; it never fails. When ids repeat, the last box
// with a given id wins.
func Resolve(d *Diagram) *Resolved {
	r := &Resolved{
		Diagram: d,
		Boxes:   make(map[ID]*Box, len(d.Nodes)),
	}
	for i := range d.Nodes {
		r.Boxes[d.Nodes[i].ID] = &d.Nodes[i]
	}

	seen := make(map[ID]int)
	report := func(id ID, link int) {
		if i, ok := seen[id]; ok {
			r.Diagnostics[i].Links = append(r.Diagnostics[i].Links, link)
			return
		}
		seen[id] = len(r.Diagnostics)
		r.Diagnostics = append(r.Diagnostics, Diagnostic{ID: id, Links: []int{link}})
	}

	for i, l := range d.Links {
		_, okSrc := r.Boxes[l.Source]
		_, okDst := r.Boxes[l.Target]
		if !okSrc {
			report(l.Source, i)
		}
		if !okDst && l.Target != l.Source {
			report(l.Target, i)
		}
		if okSrc && okDst {
			r.Links = append(r.Links, l)
		} else {
			r.Skipped++
		}
	}
	return r
}

// MissingIDs returns the ids named by Diagnostics, in order.
func (r *Resolved) MissingIDs() []ID {
	ids := make([]ID, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		ids[i] = d.ID
	}
	return ids
}

// Endpoints returns the boxes at each end of a resolved link.
func (r *Resolved) Endpoints(l Link) (source, target *Box) {
	return r.Boxes[l.Source], r.Boxes[l.Target]
}
