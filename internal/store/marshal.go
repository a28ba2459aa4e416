package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/extsql/internal/entity"
)

// marshalDescriptors converts descriptors to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON, the same bytes the fingerprint is computed
// over.
func marshalDescriptors(descs []entity.Descriptor) (string, error) {
	ptrs := make([]*entity.Descriptor, len(descs))
	for i := range descs {
		ptrs[i] = &descs[i]
	}
	data, err := entity.CanonicalDescriptors(ptrs)
	if err != nil {
		return "", fmt.Errorf("marshal descriptors: %w", err)
	}
	return string(data), nil
}

// unmarshalDescriptors parses stored descriptor JSON. Declared entities
// re-derive their spellings on decode.
func unmarshalDescriptors(data string) ([]entity.Descriptor, error) {
	if data == "" || data == "[]" {
		return []entity.Descriptor{}, nil
	}
	var descs []entity.Descriptor
	if err := json.Unmarshal([]byte(data), &descs); err != nil {
		return nil, fmt.Errorf("unmarshal descriptors: %w", err)
	}
	return descs, nil
}
