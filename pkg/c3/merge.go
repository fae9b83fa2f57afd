package c3

import (
	"slices"

	"github.com/matzehuels/mro/pkg/hierarchy"
)

// Input is one list taking part in a merge, labelled with where it came from.
type Input struct {
	// Source is the base whose linearization Seq is, or the class being
	// linearized when Local is true.
	Source hierarchy.ClassID
	// Local marks the local precedence list (the declared bases).
	Local bool
	// Seq is the ordered, duplicate-free sequence to merge.
	Seq []hierarchy.ClassID
}

// conflict describes a merge that ran out of eligible heads.
type conflict struct {
	heads     []hierarchy.ClassID
	partial   []hierarchy.ClassID
	remaining []Input
}

// Merge runs the C3 merge over plain lists. Each list must be free of
// duplicates. On failure it returns an [*InconsistentError] whose Class is
// empty and whose Partial holds the output produced before the merge stuck.
func Merge(lists ...[]hierarchy.ClassID) ([]hierarchy.ClassID, error) {
	inputs := make([]Input, len(lists))
	for i, l := range lists {
		inputs[i] = Input{Seq: l}
	}
	out, c := merge(inputs)
	if c != nil {
		return nil, &InconsistentError{
			Conflicts: c.heads,
			Partial:   c.partial,
			Remaining: c.remaining,
		}
	}
	return out, nil
}

// merge repeatedly takes the first head, scanning inputs left to right, that
// does not occur in the tail of any input. tails counts non-head occurrences
// so eligibility is a map lookup; removing a head promotes the next element
// out of its list's tail.
func merge(inputs []Input) ([]hierarchy.ClassID, *conflict) {
	lists := make([][]hierarchy.ClassID, len(inputs))
	tails := make(map[hierarchy.ClassID]int)
	size := 0
	for i, in := range inputs {
		lists[i] = in.Seq
		size += len(in.Seq)
		if len(in.Seq) > 1 {
			for _, id := range in.Seq[1:] {
				tails[id]++
			}
		}
	}

	out := make([]hierarchy.ClassID, 0, size)
	for {
		var (
			next      hierarchy.ClassID
			found     bool
			exhausted = true
		)
		for _, l := range lists {
			if len(l) == 0 {
				continue
			}
			exhausted = false
			if tails[l[0]] == 0 {
				next, found = l[0], true
				break
			}
		}

		if exhausted {
			return out, nil
		}
		if !found {
			return nil, stuck(inputs, lists, out)
		}

		out = append(out, next)
		for i, l := range lists {
			if len(l) > 0 && l[0] == next {
				lists[i] = l[1:]
				if len(lists[i]) > 0 {
					tails[lists[i][0]]--
				}
			}
		}
	}
}

func stuck(inputs []Input, lists [][]hierarchy.ClassID, out []hierarchy.ClassID) *conflict {
	c := &conflict{partial: out}
	seen := make(map[hierarchy.ClassID]bool)
	for i, l := range lists {
		if len(l) == 0 {
			continue
		}
		if !seen[l[0]] {
			seen[l[0]] = true
			c.heads = append(c.heads, l[0])
		}
		c.remaining = append(c.remaining, Input{
			Source: inputs[i].Source,
			Local:  inputs[i].Local,
			Seq:    slices.Clone(l),
		})
	}
	return c
}
