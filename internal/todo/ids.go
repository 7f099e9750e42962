package todo

import "time"

// idGen hands out time-derived ids (Unix milliseconds). When the clock has
// not moved past the last id, the next id is last+1, so ids stay unique
// and increasing within a session.
type idGen struct {
	now  func() time.Time
	last int64
}

func (g *idGen) next() int64 {
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// observe raises the floor so hydrated ids are never reissued.
func (g *idGen) observe(id int64) {
	if id > g.last {
		g.last = id
	}
}
