package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
)

// DomainGraph is the domain prefix for registry fingerprints. The version
// suffix allows the encoding to change later.
const DomainGraph = "extsql/graph/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalDescriptors encodes descs as an RFC 8785 JSON array in
// (file, line, name) order, so registration order does not affect the
// result.
func CanonicalDescriptors(descs []*Descriptor) ([]byte, error) {
	sorted := slices.Clone(descs)
	slices.SortFunc(sorted, func(a, b *Descriptor) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})

	list := make([]any, len(sorted))
	for i, d := range sorted {
		list[i] = d.canonicalMap()
	}

	canonical, err := MarshalCanonical(list)
	if err != nil {
		return nil, fmt.Errorf("canonical descriptors: %w", err)
	}
	return canonical, nil
}

// Fingerprint computes a content address for a set of descriptors.
func Fingerprint(descs []*Descriptor) (string, error) {
	canonical, err := CanonicalDescriptors(descs)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: %w", err)
	}
	return hashWithDomain(DomainGraph, canonical), nil
}

// canonicalMap converts a descriptor into values MarshalCanonical accepts.
func (d *Descriptor) canonicalMap() map[string]any {
	requires := make([]any, len(d.Requires))
	for i, r := range d.Requires {
		requires[i] = map[string]any{"kind": string(r.Kind), "target": r.Target}
	}
	creates := make([]any, len(d.Creates))
	for i, c := range d.Creates {
		creates[i] = map[string]any{"kind": string(c.Kind), "name": c.Name()}
	}
	return map[string]any{
		"module_path": d.ModulePath,
		"full_path":   d.FullPath,
		"sql":         d.SQL,
		"file":        d.File,
		"line":        d.Line,
		"name":        d.Name,
		"bootstrap":   d.Bootstrap,
		"finalize":    d.Finalize,
		"requires":    requires,
		"creates":     creates,
	}
}
