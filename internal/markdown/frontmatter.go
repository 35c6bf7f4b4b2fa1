package markdown

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// Default indentation in front matter
const Indent int = 2

// FrontMatter represents the raw YAML Front Matter of a note.
type FrontMatter string

func (f FrontMatter) IsBlank() bool {
	return Document(f).IsBlank()
}

func (f FrontMatter) AsMap() (map[string]any, error) {
	var attributes = make(map[string]any)
	if err := yaml.Unmarshal([]byte(f), &attributes); err != nil {
		return nil, err
	}
	return attributes, nil
}

// Field is a single front matter attribute.
type Field struct {
	Key   string
	Value any
}

// EncodeFields formats attributes to the YAML front matter format,
// preserving the given field order. Go maps do not guarantee iteration
// order and published files must be byte-for-byte reproducible.
func EncodeFields(fields []Field) (string, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode}
	for _, field := range fields {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: field.Key}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(field.Value); err != nil {
			return "", err
		}
		mapping.Content = append(mapping.Content, keyNode, valueNode)
	}

	var buf bytes.Buffer
	bufEncoder := yaml.NewEncoder(&buf)
	bufEncoder.SetIndent(Indent)
	if err := bufEncoder.Encode(mapping); err != nil {
		return "", err
	}
	if err := bufEncoder.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
