package planner

import "sort"

const (
	DayStartHour        = 8
	DayEndHour          = 18
	TravelBufferMinutes = 30
	DefaultVisitMinutes = 120
)

// DailyCeiling is the minute budget of one day, travel buffers included.
func DailyCeiling() int {
	return (DayEndHour - DayStartHour) * 60
}

// RequiredMinutes is the load a candidate adds to a day.
func RequiredMinutes(c Candidate) int {
	return c.Minutes + TravelBufferMinutes
}

type Allocation struct {
	Days [][]Candidate
	// Loads[i] is the cumulative required minutes of Days[i].
	Loads []int
	// Dropped holds candidates no day could take without passing the ceiling.
	Dropped []Candidate
}

// Allocate spreads the pool over days, longest visit first. Each candidate goes
// to the least loaded day that can still fit it (ties: lowest index); a
// candidate that fits nowhere is dropped. The result depends only on the pool
// order and the day count.
func Allocate(pool []Candidate, days int) Allocation {
	if days < 1 {
		days = 1
	}

	sorted := make([]Candidate, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Minutes > sorted[j].Minutes
	})

	out := Allocation{
		Days:  make([][]Candidate, days),
		Loads: make([]int, days),
	}
	ceiling := DailyCeiling()

	for _, c := range sorted {
		need := RequiredMinutes(c)
		best := -1
		for d := 0; d < days; d++ {
			if out.Loads[d]+need > ceiling {
				continue
			}
			if best == -1 || out.Loads[d] < out.Loads[best] {
				best = d
			}
		}
		if best == -1 {
			out.Dropped = append(out.Dropped, c)
			continue
		}
		out.Days[best] = append(out.Days[best], c)
		out.Loads[best] += need
	}

	for d := range out.Days {
		if out.Days[d] == nil {
			out.Days[d] = []Candidate{}
		}
	}
	return out
}
