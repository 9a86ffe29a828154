package artifact

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/dd0wney/cluso-tcd/pkg/graph"
)

// GraphML attribute keys. The ids are stable so diffs between runs stay small.
const (
	keyWeight     = "d0"
	keySupport    = "d1"
	keyCentrality = "d2"
)

type graphMLDocument struct {
	XMLName xml.Name     `xml:"http://graphml.graphdrawing.org/xmlns graphml"`
	Keys    []graphMLKey `xml:"key"`
	Graph   graphMLGraph `xml:"graph"`
}

type graphMLKey struct {
	ID   string `xml:"id,attr"`
	For  string `xml:"for,attr"`
	Name string `xml:"attr.name,attr"`
	Type string `xml:"attr.type,attr"`
}

type graphMLGraph struct {
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphMLNode `xml:"node"`
	Edges       []graphMLEdge `xml:"edge"`
}

type graphMLNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphMLData `xml:"data"`
}

type graphMLEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphMLData `xml:"data"`
}

type graphMLData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteGraphML writes g as an undirected GraphML document. Edges carry weight
// and support; when scores is non-nil, nodes carry their centrality.
func WriteGraphML(w io.Writer, g graph.Reader, scores map[string]float64) error {
	doc := graphMLDocument{
		Keys: []graphMLKey{
			{ID: keyWeight, For: "edge", Name: "weight", Type: "double"},
			{ID: keySupport, For: "edge", Name: "support", Type: "double"},
		},
		Graph: graphMLGraph{EdgeDefault: "undirected"},
	}
	if scores != nil {
		doc.Keys = append(doc.Keys, graphMLKey{ID: keyCentrality, For: "node", Name: "centrality", Type: "double"})
	}

	for _, id := range g.Nodes() {
		node := graphMLNode{ID: id}
		if score, ok := scores[id]; ok {
			node.Data = []graphMLData{{Key: keyCentrality, Value: formatFloat(score)}}
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, node)
	}
	for _, e := range g.Edges() {
		doc.Graph.Edges = append(doc.Graph.Edges, graphMLEdge{
			Source: e.U,
			Target: e.V,
			Data: []graphMLData{
				{Key: keyWeight, Value: formatFloat(e.Weight)},
				{Key: keySupport, Value: formatFloat(e.Support)},
			},
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode graphml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ReadGraphML parses a document written by WriteGraphML. Attributes are
// matched by attr.name rather than key id, so any GraphML 1.0 document that
// declares weight and support edge keys loads.
func ReadGraphML(r io.Reader) (*graph.Graph, map[string]float64, error) {
	var doc graphMLDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("decode graphml: %w", err)
	}

	names := make(map[string]string, len(doc.Keys))
	for _, k := range doc.Keys {
		names[k.ID] = k.Name
	}

	g := graph.New()
	var scores map[string]float64
	for _, n := range doc.Graph.Nodes {
		g.AddNode(n.ID)
		for _, d := range n.Data {
			if names[d.Key] != "centrality" {
				continue
			}
			v, err := strconv.ParseFloat(d.Value, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("node %q centrality: %w", n.ID, err)
			}
			if scores == nil {
				scores = make(map[string]float64)
			}
			scores[n.ID] = v
		}
	}
	for _, e := range doc.Graph.Edges {
		var weight, support float64
		for _, d := range e.Data {
			v, err := strconv.ParseFloat(d.Value, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("edge %s-%s %s: %w", e.Source, e.Target, names[d.Key], err)
			}
			switch names[d.Key] {
			case "weight":
				weight = v
			case "support":
				support = v
			}
		}
		g.SetEdge(e.Source, e.Target, weight, support)
	}
	return g, scores, nil
}
