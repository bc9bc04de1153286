package graph

import (
	"sort"

	"signalflow/pkg/block"
)

// Wire is a directed signal connection from one block's named output pin
// to another block's named input pin.
type Wire struct {
	From    string // source block ID
	FromPin string // source output pin, e.g. "OUT" or "OUT_2"
	To      string // destination block ID
	ToPin   string // destination input pin, e.g. "IN" or "IN_0"
}

// Source identifies the producer feeding one input pin.
type Source struct {
	ID  string
	Pin string
}

// Graph is the signal-domain dependency structure derived from a
// schematic. It is built once per run and is immutable afterwards.
type Graph struct {
	blocks map[string]*block.Block
	ids    []string // insertion order of blocks, the deterministic tie-break
	ins    map[string]map[string]Source
	outs   map[string][]string
}

// Build derives the evaluation graph for the given signal-domain blocks.
// Wires with an endpoint that is not among the blocks belong to the
// electrical netlist and are skipped. When the editor delivers two wires
// into the same pin, the later one wins.
//
// Blocks with no signal inputs (Constant, probes) are valid roots; no
// wiring problem is reported here; dangling required inputs surface at
// driver construction.
func Build(blocks []*block.Block, wires []Wire) *Graph {
	g := &Graph{
		blocks: make(map[string]*block.Block, len(blocks)),
		ins:    make(map[string]map[string]Source),
		outs:   make(map[string][]string),
	}

	for _, b := range blocks {
		if _, dup := g.blocks[b.ID]; dup {
			continue
		}
		g.blocks[b.ID] = b
		g.ids = append(g.ids, b.ID)
	}

	for _, w := range wires {
		if _, ok := g.blocks[w.From]; !ok {
			continue
		}
		if _, ok := g.blocks[w.To]; !ok {
			continue
		}
		pins := g.ins[w.To]
		if pins == nil {
			pins = make(map[string]Source)
			g.ins[w.To] = pins
		}
		pins[w.ToPin] = Source{ID: w.From, Pin: w.FromPin}
	}

	// Derive the forward adjacency from the settled pin sources, walking
	// blocks in insertion order and pins in name order so the schedule is
	// reproducible for the same schematic.
	for _, id := range g.ids {
		for _, pin := range sortedPins(g.ins[id]) {
			src := g.ins[id][pin]
			g.outs[src.ID] = append(g.outs[src.ID], id)
		}
	}

	return g
}

func sortedPins(pins map[string]Source) []string {
	names := make([]string, 0, len(pins))
	for pin := range pins {
		names = append(names, pin)
	}
	sort.Strings(names)
	return names
}

// Block returns the block with the given ID, nil when absent.
func (g *Graph) Block(id string) *block.Block { return g.blocks[id] }

// IDs returns the block identifiers in insertion order.
func (g *Graph) IDs() []string { return g.ids }

// Inputs returns the wired input pins of a block and their producers.
func (g *Graph) Inputs(id string) map[string]Source { return g.ins[id] }

// Wired reports whether a specific input pin has a producer.
func (g *Graph) Wired(id, pin string) bool {
	_, ok := g.ins[id][pin]
	return ok
}

// Size returns the number of blocks in the graph.
func (g *Graph) Size() int { return len(g.ids) }
