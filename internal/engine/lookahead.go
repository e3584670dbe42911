package engine

import (
	"slices"
	"strconv"
)

// guard answers "can this draw still be finished validly?" by searching a
// reduced board: a group is only its size, UEFA count and the set of other
// confederations it holds; a pot is only how many teams of each
// confederation are left in it. Teams of one confederation in one pot are
// interchangeable for every rule, so the search branches per confederation,
// and results are memoized per reduced board.
type guard struct {
	index map[Confederation]int
	memo  map[string]bool
}

const uefaIdx = 0

type slot struct {
	size int
	uefa int
	mask uint64
}

type board struct {
	slots []slot
	pots  [NumPots][]int
}

func newGuard(r *Registry) *guard {
	g := &guard{
		index: map[Confederation]int{UEFA: uefaIdx},
		memo:  make(map[string]bool),
	}
	for _, t := range r.Teams() {
		g.idx(t.Confederation)
	}
	return g
}

func (g *guard) idx(c Confederation) int {
	if i, ok := g.index[c]; ok {
		return i
	}
	i := len(g.index)
	g.index[c] = i
	return i
}

// completable reports whether every unplaced registry team from pot index p
// onwards can still be seated with all groups ending valid.
func (g *guard) completable(reg *Registry, groups []Group, placed map[string]bool, p int) bool {
	b := g.board(reg, groups, placed)
	return g.feasible(b, p)
}

// admits reports whether seating t in groups[gi] keeps the draw completable.
func (g *guard) admits(reg *Registry, groups []Group, placed map[string]bool, p, gi int, t Team) bool {
	b := g.board(reg, groups, placed)
	c := g.idx(t.Confederation)
	if c >= len(b.pots[p]) || b.pots[p][c] == 0 {
		return false
	}
	b.place(gi, c, p)
	return g.feasible(b, p)
}

func (g *guard) board(reg *Registry, groups []Group, placed map[string]bool) *board {
	b := &board{slots: make([]slot, len(groups))}
	for i, grp := range groups {
		for _, t := range grp.Teams {
			c := g.idx(t.Confederation)
			b.slots[i].size++
			if c == uefaIdx {
				b.slots[i].uefa++
			} else if c < 64 {
				b.slots[i].mask |= 1 << c
			}
		}
	}
	n := len(g.index)
	for q := range NumPots {
		b.pots[q] = make([]int, n)
		for _, t := range reg.Pots[q] {
			if !placed[t.ID] {
				b.pots[q][g.idx(t.Confederation)]++
			}
		}
	}
	return b
}

func (b *board) place(i, c, p int) {
	b.slots[i].size++
	if c == uefaIdx {
		b.slots[i].uefa++
	} else {
		b.slots[i].mask |= 1 << c
	}
	b.pots[p][c]--
}

func (b *board) unplace(i, c, p int) {
	b.slots[i].size--
	if c == uefaIdx {
		b.slots[i].uefa--
	} else {
		b.slots[i].mask &^= 1 << c
	}
	b.pots[p][c]++
}

func (b *board) potEmpty(p int) bool {
	for _, n := range b.pots[p] {
		if n > 0 {
			return false
		}
	}
	return true
}

// accepts is CanPlace on the reduced board, plus: a group without a UEFA
// team that has one slot left must take a UEFA team.
func (s slot) accepts(c int) bool {
	if c == uefaIdx {
		return s.uefa < MaxUEFA
	}
	if c >= 64 || s.mask&(1<<c) != 0 {
		return false
	}
	return !(s.uefa == 0 && GroupSize-s.size == 1)
}

func (g *guard) feasible(b *board, p int) bool {
	for p < NumPots && b.potEmpty(p) {
		p++
	}
	if p == NumPots {
		for _, s := range b.slots {
			if s.uefa == 0 || s.size != GroupSize {
				return false
			}
		}
		return true
	}

	key := b.key(p)
	if v, ok := g.memo[key]; ok {
		return v
	}
	ok := g.search(b, p)
	g.memo[key] = ok
	return ok
}

func (g *guard) search(b *board, p int) bool {
	need, supply := 0, 0
	for _, s := range b.slots {
		if s.uefa > 0 {
			continue
		}
		if s.size >= GroupSize {
			return false
		}
		need++
	}
	for q := p; q < NumPots; q++ {
		supply += b.pots[q][uefaIdx]
	}
	if need > supply {
		return false
	}

	needy := make([]int, 0, len(b.slots))
	for i, s := range b.slots {
		if s.size == p {
			needy = append(needy, i)
		}
	}

	for c, n := range b.pots[p] {
		if n == 0 {
			continue
		}
		if !slices.ContainsFunc(needy, func(i int) bool { return b.slots[i].accepts(c) }) {
			return false
		}
	}

	// Branch on the group with the fewest options.
	best, bestOpts := -1, 0
	for _, i := range needy {
		opts := 0
		for c, n := range b.pots[p] {
			if n > 0 && b.slots[i].accepts(c) {
				opts += n
			}
		}
		if opts == 0 {
			return false
		}
		if best < 0 || opts < bestOpts {
			best, bestOpts = i, opts
		}
	}
	if best < 0 {
		return false
	}

	for c, n := range b.pots[p] {
		if n == 0 || !b.slots[best].accepts(c) {
			continue
		}
		b.place(best, c, p)
		ok := g.feasible(b, p)
		b.unplace(best, c, p)
		if ok {
			return true
		}
	}
	return false
}

func (b *board) key(p int) string {
	sigs := make([]uint64, len(b.slots))
	for i, s := range b.slots {
		sigs[i] = s.mask<<8 | uint64(s.uefa)<<4 | uint64(s.size)
	}
	slices.Sort(sigs)

	buf := make([]byte, 0, 256)
	buf = strconv.AppendInt(buf, int64(p), 10)
	for _, sig := range sigs {
		buf = append(buf, '|')
		buf = strconv.AppendUint(buf, sig, 16)
	}
	for q := p; q < NumPots; q++ {
		buf = append(buf, '/')
		for _, n := range b.pots[q] {
			buf = strconv.AppendInt(buf, int64(n), 10)
			buf = append(buf, ',')
		}
	}
	return string(buf)
}
