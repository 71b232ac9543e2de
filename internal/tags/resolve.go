package tags

import "fmt"

type Mode string

const (
	// ModeConverge computes the full closure of every tag.
	ModeConverge Mode = "converge"
	// ModeBounded runs a fixed number of substitution rounds.
	ModeBounded Mode = "bounded"
)

const BoundedRounds = 3

type Options struct {
	Mode Mode
	// MaxRounds sets the number of rounds in ModeBounded. Zero selects
	// BoundedRounds. ModeConverge ignores it.
	MaxRounds int
}

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeConverge:
		return ModeConverge, nil
	case ModeBounded:
		return ModeBounded, nil
	default:
		return "", fmt.Errorf("unknown tag resolution mode: %q", s)
	}
}

func (o Options) rounds() int {
	if o.MaxRounds > 0 {
		return o.MaxRounds
	}
	return BoundedRounds
}

type Stats struct {
	Tags int
	// Rounds is the number of substitution rounds run in ModeBounded, or
	// the longest chain of tag references followed in ModeConverge.
	Rounds     int
	Converged  bool
	Unresolved int
}

// Resolve flattens tag references. References to tags missing from the
// table are kept as literal members.
func Resolve(raw Table, opts Options) (Table, Stats) {
	current := normalize(raw)
	if opts.Mode == ModeBounded {
		return resolveBounded(current, opts.rounds())
	}
	return resolveClosure(current)
}

// resolveClosure gives every tag the items reachable from it. Each tag is
// walked breadth first with a visited set, so cycles of any shape end and
// no reference to a defined tag survives.
func resolveClosure(t Table) (Table, Stats) {
	out := make(Table, len(t))
	stats := Stats{Tags: len(t), Converged: true}
	for key := range t {
		members, depth := closure(t, key)
		out[key] = members
		if depth > stats.Rounds {
			stats.Rounds = depth
		}
	}
	stats.Unresolved = out.Unresolved()
	return out, stats
}

func closure(t Table, key string) ([]string, int) {
	visited := map[string]bool{key: true}
	level := []string{key}
	var members []string
	depth := 0
	for len(level) > 0 {
		var next []string
		for _, tag := range level {
			for _, value := range t[tag] {
				if !IsRef(value) {
					members = append(members, value)
					continue
				}
				if _, known := t[value]; !known {
					members = append(members, value)
					continue
				}
				if !visited[value] {
					visited[value] = true
					next = append(next, value)
				}
			}
		}
		if len(next) > 0 {
			depth++
		}
		level = next
	}
	return uniqueSorted(members), depth
}

// resolveBounded runs rounds substitution rounds. Each round reads the
// previous round's snapshot, so the result never depends on map iteration
// order.
func resolveBounded(current Table, rounds int) (Table, Stats) {
	stats := Stats{Tags: len(current)}
	for stats.Rounds < rounds {
		next := Expand(current)
		stats.Rounds++
		if next.Equal(current) {
			stats.Converged = true
			break
		}
		current = next
	}
	if !stats.Converged {
		stats.Converged = Expand(current).Equal(current)
	}
	stats.Unresolved = current.Unresolved()
	return current, stats
}

// Expand performs one substitution round.
func Expand(t Table) Table {
	out := make(Table, len(t))
	for key, values := range t {
		expanded := make([]string, 0, len(values))
		for _, value := range values {
			if !IsRef(value) {
				expanded = append(expanded, value)
				continue
			}
			members, known := t[value]
			if !known {
				expanded = append(expanded, value)
				continue
			}
			expanded = append(expanded, members...)
		}
		out[key] = uniqueSorted(expanded)
	}
	return out
}
