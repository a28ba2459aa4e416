package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/extsql/internal/entity"
)

type yamlManifest struct {
	Extension Extension        `yaml:"extension"`
	SQL       []yamlDescriptor `yaml:"sql"`
}

type yamlDescriptor struct {
	Name       string         `yaml:"name"`
	ModulePath string         `yaml:"module_path"`
	FullPath   string         `yaml:"full_path"`
	File       string         `yaml:"file"`
	Line       int            `yaml:"line"`
	Bootstrap  bool           `yaml:"bootstrap"`
	Finalize   bool           `yaml:"finalize"`
	SQL        string         `yaml:"sql"`
	Requires   []yamlRef      `yaml:"requires"`
	Creates    []yamlDeclared `yaml:"creates"`

	node *yaml.Node
}

// UnmarshalYAML rejects unknown keys itself: Node.Decode does not inherit
// KnownFields from the manifest decoder.
func (d *yamlDescriptor) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.MappingNode {
		for i := 0; i < len(n.Content); i += 2 {
			key := n.Content[i]
			if !descriptorFields[key.Value] {
				return yamlError(key, key.Value, fmt.Sprintf("unknown descriptor field %q", key.Value))
			}
		}
	}

	type plain yamlDescriptor
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*d = yamlDescriptor(p)
	d.node = n
	return nil
}

// yamlRef accepts a bare string or a single-key mapping.
type yamlRef struct {
	kind   string
	target string
	node   *yaml.Node
}

func (r *yamlRef) UnmarshalYAML(n *yaml.Node) error {
	r.node = n
	if n.Kind == yaml.ScalarNode {
		r.kind = string(entity.RefRequires)
		r.target = n.Value
		return nil
	}
	kind, target, err := singleKey(n, "requires")
	if err != nil {
		return err
	}
	r.kind, r.target = kind, target
	return nil
}

type yamlDeclared struct {
	tag  string
	name string
	node *yaml.Node
}

func (c *yamlDeclared) UnmarshalYAML(n *yaml.Node) error {
	c.node = n
	tag, name, err := singleKey(n, "creates")
	if err != nil {
		return err
	}
	c.tag, c.name = tag, name
	return nil
}

func singleKey(n *yaml.Node, field string) (string, string, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return "", "", yamlError(n, field, "entry must be a string or a single-key mapping")
	}
	return n.Content[0].Value, n.Content[1].Value, nil
}

func yamlError(n *yaml.Node, field, msg string) *CompileError {
	return &CompileError{Field: field, Message: msg, Line: n.Line, Column: n.Column}
}

func yamlEntityError(n *yaml.Node, field string, err error) *CompileError {
	ce := yamlError(n, field, err.Error())
	ce.Err = err
	return ce
}

// ParseYAML compiles a YAML manifest. filename is used in error positions
// only.
func ParseYAML(filename string, src []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)

	var raw yamlManifest
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &CompileError{Field: "yaml", Message: "manifest is empty", Filename: filename}
		}
		var ce *CompileError
		if errors.As(err, &ce) {
			ce.Filename = filename
			return nil, ce
		}
		return nil, &CompileError{Field: "yaml", Message: fmt.Sprintf("%s: %v", filename, err), Filename: filename}
	}

	m, err := raw.compile()
	if err != nil {
		var ce *CompileError
		if errors.As(err, &ce) {
			ce.Filename = filename
		}
		return nil, err
	}
	return m, nil
}

func (raw *yamlManifest) compile() (*Manifest, error) {
	if raw.Extension.Name == "" {
		return nil, &CompileError{Field: "extension.name", Message: "extension name is required"}
	}

	m := &Manifest{Extension: raw.Extension}
	for _, yd := range raw.SQL {
		if yd.Name == "" {
			return nil, yamlEntityError(yd.node, "name", entity.NewEmptyIdentifierError("descriptor"))
		}
		if yd.Line < 0 {
			return nil, yamlError(yd.node, "line", fmt.Sprintf("line must be non-negative, got %d", yd.Line))
		}

		d := entity.Descriptor{
			Name:       yd.Name,
			ModulePath: yd.ModulePath,
			FullPath:   yd.FullPath,
			File:       yd.File,
			Line:       yd.Line,
			Bootstrap:  yd.Bootstrap,
			Finalize:   yd.Finalize,
			SQL:        yd.SQL,
		}
		for _, r := range yd.Requires {
			ref, err := newRef(r.kind, r.target, yd.Name)
			if err != nil {
				return nil, yamlEntityError(r.node, "requires", err)
			}
			d.Requires = append(d.Requires, ref)
		}
		for _, c := range yd.Creates {
			decl, err := entity.NewDeclared(declarationKind(c.tag), c.name)
			if err != nil {
				return nil, yamlEntityError(c.node, "creates", err)
			}
			d.Creates = append(d.Creates, decl)
		}
		m.Descriptors = append(m.Descriptors, d)
	}
	return m, nil
}
