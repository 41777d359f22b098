// Package graphml reads and writes graphs in the GraphML format produced by common
// network analysis tools, with typed attribute keys.
package graphml

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"

	"jurisnet/domain/graph"
)

const namespace = "http://graphml.graphdrawing.org/xmlns"

type document struct {
	XMLName xml.Name `xml:"graphml"`
	XMLNS   string   `xml:"xmlns,attr,omitempty"`
	Keys    []key    `xml:"key"`
	Graph   body     `xml:"graph"`
}

type key struct {
	ID      string  `xml:"id,attr"`
	For     string  `xml:"for,attr"`
	Name    string  `xml:"attr.name,attr"`
	Type    string  `xml:"attr.type,attr"`
	Default *string `xml:"default,omitempty"`
}

type body struct {
	EdgeDefault string `xml:"edgedefault,attr"`
	Nodes       []node `xml:"node"`
	Edges       []edge `xml:"edge"`
}

type node struct {
	ID   string `xml:"id,attr"`
	Data []data `xml:"data"`
}

type edge struct {
	Source string `xml:"source,attr"`
	Target string `xml:"target,attr"`
	Data   []data `xml:"data"`
}

type data struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// Decode parses a directed GraphML document. Attribute values are converted according
// to their key's attr.type; an edge without a weight gets weight 1.
func Decode(r io.Reader) (*graph.Graph, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode graphml: %w", err)
	}
	if doc.Graph.EdgeDefault != "" && doc.Graph.EdgeDefault != "directed" {
		return nil, fmt.Errorf("decode graphml: %s graphs are not supported", doc.Graph.EdgeDefault)
	}

	keys := make(map[string]key, len(doc.Keys))
	for _, k := range doc.Keys {
		keys[k.ID] = k
	}

	g := graph.New()
	for _, n := range doc.Graph.Nodes {
		attrs, err := decodeData(keys, "node", n.Data)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		g.AddNode(n.ID, attrs)
	}
	for _, e := range doc.Graph.Edges {
		attrs, err := decodeData(keys, "edge", e.Data)
		if err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.Source, e.Target, err)
		}
		weight := 1.0
		if w, ok := attrs.Float(graph.AttrWeight); ok {
			weight = w
		}
		delete(attrs, graph.AttrWeight)
		g.AddEdge(e.Source, e.Target, weight, attrs)
	}
	return g, nil
}

func decodeData(keys map[string]key, domain string, values []data) (graph.Attributes, error) {
	attrs := make(graph.Attributes, len(values))
	for _, k := range keys {
		if k.Default != nil && (k.For == domain || k.For == "all") {
			v, err := graph.ParseValue(k.Type, *k.Default)
			if err != nil {
				return nil, err
			}
			attrs[k.Name] = v
		}
	}
	for _, d := range values {
		k, ok := keys[d.Key]
		if !ok {
			return nil, fmt.Errorf("undeclared key %q", d.Key)
		}
		v, err := graph.ParseValue(k.Type, d.Value)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", k.Name, err)
		}
		attrs[k.Name] = v
	}
	return attrs, nil
}

// Encode writes g as GraphML. Keys are declared per attribute name with the narrowest
// type that fits every value: long, double, boolean, else string.
func Encode(w io.Writer, g *graph.Graph) error {
	nodeTypes := make(map[string]string)
	for _, id := range g.Nodes() {
		attrs, _ := g.Node(id)
		observe(nodeTypes, attrs)
	}
	edgeTypes := map[string]string{graph.AttrWeight: graph.KindDouble}
	edges := g.Edges()
	for _, e := range edges {
		observe(edgeTypes, e.Attrs)
	}

	doc := document{XMLNS: namespace, Graph: body{EdgeDefault: "directed"}}
	nodeKeys := declare(&doc, "node", nodeTypes)
	edgeKeys := declare(&doc, "edge", edgeTypes)

	for _, id := range g.Nodes() {
		attrs, _ := g.Node(id)
		doc.Graph.Nodes = append(doc.Graph.Nodes, node{ID: id, Data: encodeData(nodeKeys, attrs)})
	}
	for _, e := range edges {
		attrs := e.Attrs.Clone()
		attrs[graph.AttrWeight] = e.Weight
		doc.Graph.Edges = append(doc.Graph.Edges, edge{Source: e.From, Target: e.To, Data: encodeData(edgeKeys, attrs)})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode graphml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func observe(types map[string]string, attrs graph.Attributes) {
	for name, v := range attrs {
		types[name] = widen(types[name], graph.KindOf(v))
	}
}

func widen(current, next string) string {
	switch {
	case current == "" || current == next:
		return next
	case (current == graph.KindLong && next == graph.KindDouble) || (current == graph.KindDouble && next == graph.KindLong):
		return graph.KindDouble
	}
	return graph.KindString
}

// declare adds one key per attribute, in name order, and returns name -> key id.
func declare(doc *document, domain string, types map[string]string) map[string]string {
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)

	ids := make(map[string]string, len(names))
	for _, name := range names {
		id := fmt.Sprintf("d%d", len(doc.Keys))
		doc.Keys = append(doc.Keys, key{ID: id, For: domain, Name: name, Type: types[name]})
		ids[name] = id
	}
	return ids
}

func encodeData(ids map[string]string, attrs graph.Attributes) []data {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]data, 0, len(names))
	for _, name := range names {
		out = append(out, data{Key: ids[name], Value: graph.FormatValue(attrs[name])})
	}
	return out
}
