package exportable

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLExporter writes a YAML sequence with one mapping per row, keyed by
// column label in column order. Each row is encoded as its own sequence item
// so the output can be streamed.
type YAMLExporter struct{}

func (YAMLExporter) Extension() string   { return "yaml" }
func (YAMLExporter) ContentType() string { return "application/yaml" }

func (YAMLExporter) Dump(w io.Writer, t Table, h Hints) error {
	return writeText(w, h, func(w io.Writer) error {
		cols := t.Columns()
		empty := true
		for row, err := range t.Rows() {
			if err != nil {
				return err
			}
			item, err := yamlRow(cols, row)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(&yaml.Node{Kind: yaml.SequenceNode, Content: []*yaml.Node{item}})
			if err != nil {
				return err
			}
			if _, err := w.Write(out); err != nil {
				return err
			}
			empty = false
		}
		if empty {
			_, err := io.WriteString(w, "[]\n")
			return err
		}
		return nil
	})
}

func yamlRow(cols []*Column, row []any) (*yaml.Node, error) {
	m := &yaml.Node{Kind: yaml.MappingNode, Content: make([]*yaml.Node, 0, 2*len(cols))}
	for i, c := range cols {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.Label()}
		val := new(yaml.Node)
		if err := val.Encode(plainValue(c, row[i])); err != nil {
			return nil, err
		}
		m.Content = append(m.Content, key, val)
	}
	return m, nil
}
