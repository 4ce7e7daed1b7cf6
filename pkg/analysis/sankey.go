package analysis

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/vanderheijden86/aidscope/pkg/model"
)

// SankeyNode is one box of a Sankey diagram. Column 0 holds programs, 1
// partners and 2 sectors.
type SankeyNode struct {
	ID     int64
	Key    string
	Label  string
	Column int
	// Value is the larger of inflow and outflow.
	Value float64
}

// SankeyLink is a weighted flow between two nodes.
type SankeyLink struct {
	Source int64
	Target int64
	Value  float64
}

// Sankey is a layered flow diagram.
type Sankey struct {
	Nodes []SankeyNode
	Links []SankeyLink
}

// Node returns the node with id.
func (s *Sankey) Node(id int64) (SankeyNode, bool) {
	i := slices.IndexFunc(s.Nodes, func(n SankeyNode) bool { return n.ID == id })
	if i < 0 {
		return SankeyNode{}, false
	}
	return s.Nodes[i], true
}

// Columns returns the nodes grouped by column, each ordered by value
// descending.
func (s *Sankey) Columns() [][]SankeyNode {
	var cols [][]SankeyNode
	for _, n := range s.Nodes {
		for len(cols) <= n.Column {
			cols = append(cols, nil)
		}
		cols[n.Column] = append(cols[n.Column], n)
	}
	for _, c := range cols {
		slices.SortStableFunc(c, func(a, b SankeyNode) int { return cmp.Compare(b.Value, a.Value) })
	}
	return cols
}

// sankeyBuilder interns keys as graph nodes and accumulates link weights.
type sankeyBuilder struct {
	g      *simple.WeightedDirectedGraph
	ids    map[string]int64
	nodes  []SankeyNode
	weight map[[2]int64]float64
	order  [][2]int64
}

func newSankeyBuilder() *sankeyBuilder {
	return &sankeyBuilder{
		g:      simple.NewWeightedDirectedGraph(0, 0),
		ids:    make(map[string]int64),
		weight: make(map[[2]int64]float64),
	}
}

func (b *sankeyBuilder) node(key, label string) int64 {
	if id, ok := b.ids[key]; ok {
		return id
	}
	id := int64(len(b.nodes))
	b.ids[key] = id
	b.g.AddNode(simple.Node(id))
	b.nodes = append(b.nodes, SankeyNode{ID: id, Key: key, Label: label})
	return id
}

func (b *sankeyBuilder) link(from, to int64, v float64) {
	if v == 0 {
		return
	}
	edge := [2]int64{from, to}
	if _, ok := b.weight[edge]; !ok {
		b.order = append(b.order, edge)
	}
	b.weight[edge] += v
	b.g.SetWeightedEdge(b.g.NewWeightedEdge(simple.Node(from), simple.Node(to), b.weight[edge]))
}

// build assigns columns by longest path from a source and totals node values.
func (b *sankeyBuilder) build() (*Sankey, error) {
	sorted, err := topo.Sort(b.g)
	if err != nil {
		return nil, fmt.Errorf("sankey flows contain a cycle: %w", err)
	}
	column := make(map[int64]int, len(sorted))
	for _, n := range sorted {
		from := b.g.From(n.ID())
		for from.Next() {
			to := from.Node().ID()
			if c := column[n.ID()] + 1; c > column[to] {
				column[to] = c
			}
		}
	}

	last := 0
	for _, c := range column {
		last = max(last, c)
	}
	// Sinks are aligned to the last column.
	for _, n := range sorted {
		if b.g.From(n.ID()).Len() == 0 && b.g.To(n.ID()).Len() > 0 {
			column[n.ID()] = last
		}
	}

	in := make(map[int64]float64)
	out := make(map[int64]float64)
	s := &Sankey{Links: make([]SankeyLink, 0, len(b.order))}
	for _, e := range b.order {
		v := b.weight[e]
		s.Links = append(s.Links, SankeyLink{Source: e[0], Target: e[1], Value: v})
		out[e[0]] += v
		in[e[1]] += v
	}
	for _, n := range b.nodes {
		n.Column = column[n.ID]
		n.Value = max(in[n.ID], out[n.ID])
		s.Nodes = append(s.Nodes, n)
	}
	return s, nil
}

// ProgramFlows builds program → partner → sector flows. A program's budget is
// split evenly across its partners, and each partner's share evenly across
// the program's sectors. Programs without partners flow straight to their
// sectors.
func ProgramFlows(programs []model.Program, partners []model.Partner, sectors []model.Sector) (*Sankey, error) {
	partnerNames := make(map[int]string, len(partners))
	for _, p := range partners {
		partnerNames[p.ID] = p.Name
	}
	sectorNames := make(map[int]string, len(sectors))
	for _, s := range sectors {
		sectorNames[s.ID] = s.Name
	}
	label := func(names map[int]string, k model.Key) string {
		if n, ok := names[k.ID()]; ok {
			return n
		}
		return string(k)
	}

	b := newSankeyBuilder()
	for _, p := range programs {
		if p.Budget == 0 || (len(p.PartnerIDs) == 0 && len(p.SectorIDs) == 0) {
			continue
		}
		src := b.node(string(p.Key()), programLabel(p))

		sectorIDs := make([]int64, 0, len(p.SectorIDs))
		for _, id := range p.SectorIDs {
			k := model.NewKey(model.KindSector, id)
			sectorIDs = append(sectorIDs, b.node(string(k), label(sectorNames, k)))
		}

		if len(p.PartnerIDs) == 0 {
			share := p.Budget / float64(len(sectorIDs))
			for _, sid := range sectorIDs {
				b.link(src, sid, share)
			}
			continue
		}

		share := p.Budget / float64(len(p.PartnerIDs))
		for _, id := range p.PartnerIDs {
			k := model.NewKey(model.KindPartner, id)
			pid := b.node(string(k), label(partnerNames, k))
			b.link(src, pid, share)
			for _, sid := range sectorIDs {
				b.link(pid, sid, share/float64(len(sectorIDs)))
			}
		}
	}
	return b.build()
}

func programLabel(p model.Program) string {
	if p.Code != "" {
		return p.Code
	}
	return p.Name
}
