package engine

// CanPlace reports whether team may join group right now: at most two UEFA
// members, at most one member from any other confederation.
func CanPlace(g Group, t Team) bool {
	if t.Confederation == UEFA {
		return uefaCount(g) < MaxUEFA
	}
	for _, m := range g.Teams {
		if m.Confederation == t.Confederation {
			return false
		}
	}
	return true
}

func uefaCount(g Group) int {
	n := 0
	for _, m := range g.Teams {
		if m.Confederation == UEFA {
			n++
		}
	}
	return n
}

func validTeams(g Group, pool []Team) []Team {
	var out []Team
	for _, t := range pool {
		if CanPlace(g, t) {
			out = append(out, t)
		}
	}
	return out
}
