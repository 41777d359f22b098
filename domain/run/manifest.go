// Package run records what a feature run read and wrote, so that a set of output
// tables can be traced back to the graphs and settings that produced them.
package run

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"jurisnet/domain/core"
	"jurisnet/domain/graph"
)

// CodeVersion is stamped into every manifest.
const CodeVersion = "1.0.0"

// Fingerprint identifies the inputs of a run. Two runs with equal fingerprints read
// the same graphs with the same settings and produce the same tables.
type Fingerprint struct {
	Settings      core.Hash `json:"settings"`
	CitationGraph core.Hash `json:"citation_graph"`
	VoteGraph     core.Hash `json:"vote_graph"`
	CodeVersion   string    `json:"code_version"`
	Value         core.Hash `json:"fingerprint"` // hash of all above
}

// NewFingerprint combines the settings hash and both graph digests.
func NewFingerprint(settings, citations, votes core.Hash, codeVersion string) Fingerprint {
	data := fmt.Sprintf("settings:%s|citations:%s|votes:%s|code:%s", settings, citations, votes, codeVersion)
	return Fingerprint{
		Settings:      settings,
		CitationGraph: citations,
		VoteGraph:     votes,
		CodeVersion:   codeVersion,
		Value:         core.NewHash([]byte(data)),
	}
}

// GraphDigest hashes nodes, edges, weights and attributes in sorted order.
func GraphDigest(g *graph.Graph) core.Hash {
	var b strings.Builder
	for _, id := range g.Nodes() {
		attrs, _ := g.Node(id)
		fmt.Fprintf(&b, "n:%s{%s}\n", id, canonical(attrs))
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "e:%s>%s:%g{%s}\n", e.From, e.To, e.Weight, canonical(e.Attrs))
	}
	return core.NewHash([]byte(b.String()))
}

func canonical(attrs graph.Attributes) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, attrs[k])
	}
	return strings.Join(parts, ";")
}

// Manifest describes a finished run and the tables it wrote.
type Manifest struct {
	RunID       core.RunID     `json:"run_id"`
	Windows     []int          `json:"dependent_windows"`
	Lags        []int          `json:"dependent_lags"`
	Networks    []string       `json:"agreement_networks"`
	Damping     float64        `json:"damping"`
	Tables      map[string]int `json:"tables"`
	Fingerprint Fingerprint    `json:"fingerprint"`
	CreatedAt   time.Time      `json:"created_at"`
	Duration    string         `json:"duration"`
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if m.RunID.String() == "" {
		return errors.New("run manifest: run_id cannot be empty")
	}
	if m.Fingerprint.Value.IsEmpty() {
		return errors.New("run manifest: fingerprint cannot be empty")
	}
	if len(m.Tables) == 0 {
		return errors.New("run manifest: no tables written")
	}
	return nil
}
