package diagram

import "fmt"

// Severity grades a [Problem].
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Problem is a contract violation found by [Check].
type Problem struct {
	Severity Severity
	Where    string // "nodes[3]" or "links[0]"
	Message  string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s: %s", p.Severity, p.Where, p.Message)
}

// Check reports violations of the diagram contract that rendering tolerates
// but which produce meaningless geometry: duplicate ids, non-positive sizes,
// dangling link ends, and links whose boxes share a center.
func Check(d *Diagram) []Problem {
	var out []Problem
	add := func(sev Severity, where, format string, args ...any) {
		out = append(out, Problem{Severity: sev, Where: where, Message: fmt.Sprintf(format, args...)})
	}

	first := make(map[ID]int, len(d.Nodes))
	for i, b := range d.Nodes {
		where := fmt.Sprintf("nodes[%d]", i)
		if b.ID == "" {
			add(SeverityError, where, "missing id")
		} else if j, dup := first[b.ID]; dup {
			add(SeverityError, where, "duplicate id %q (first used by nodes[%d])", b.ID, j)
		} else {
			first[b.ID] = i
		}
		if b.Width <= 0 || b.Height <= 0 {
			add(SeverityError, where, "box %q has non-positive size %gx%g", b.ID, b.Width, b.Height)
		}
	}

	r := Resolve(d)
	for _, diag := range r.Diagnostics {
		for _, li := range diag.Links {
			add(SeverityError, fmt.Sprintf("links[%d]", li), "unknown box id %q", diag.ID)
		}
	}
	for i, l := range d.Links {
		src, dst := r.Endpoints(l)
		if src == nil || dst == nil {
			continue
		}
		if src.Center() == dst.Center() {
			add(SeverityWarning, fmt.Sprintf("links[%d]", i), "boxes %q and %q share a center; the link has no direction", l.Source, l.Target)
		}
	}
	return out
}

// HasErrors reports whether any problem is an error.
func HasErrors(problems []Problem) bool {
	for _, p := range problems {
		if p.Severity == SeverityError {
			return true
		}
	}
	return false
}
