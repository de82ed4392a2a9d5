package vm

import "slices"

// Graph is the control-flow view of a program that static tooling attaches
// to it.
type Graph interface {
	Successors(pc int) []int
}

// StaticCFG derives successors from each instruction's possible
// displacements. A successor equal to the program length is the exit.
type StaticCFG struct {
	succ [][]int
}

func BuildStaticCFG(p *Program) *StaticCFG {
	g := &StaticCFG{succ: make([][]int, len(p.Code))}
	for i, e := range p.Code {
		var out []int
		for _, d := range e.Inst.Displacements() {
			out = append(out, i+d)
		}
		slices.Sort(out)
		g.succ[i] = slices.Compact(out)
	}
	return g
}

func (g *StaticCFG) Successors(pc int) []int {
	if pc < 0 || pc >= len(g.succ) {
		return nil
	}
	return g.succ[pc]
}

// Reachable reports which program counters can be reached from pc 0.
func (g *StaticCFG) Reachable() []bool {
	seen := make([]bool, len(g.succ))
	if len(g.succ) == 0 {
		return seen
	}
	queue := []int{0}
	seen[0] = true
	for len(queue) != 0 {
		pc := queue[0]
		queue = queue[1:]
		for _, s := range g.succ[pc] {
			if s < len(seen) && !seen[s] {
				seen[s] = true
				queue = append(queue, s)
			}
		}
	}
	return seen
}
