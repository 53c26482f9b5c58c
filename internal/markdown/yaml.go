package markdown

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// textFields are frontmatter keys whose scalars keep their source text, so
// `title: Yes` stays "Yes" and `tags: [1.10]` stays "1.10".
var textFields = map[string]bool{
	"title":       true,
	"date":        true,
	"author":      true,
	"description": true,
	"tags":        true,
}

// unmarshalYAML decodes a YAML metadata block with yaml.v3 (YAML 1.2 core
// schema). Top level text fields are read from the node tree as written;
// every other key is decoded normally.
func unmarshalYAML(data []byte, v any) error {
	out, ok := v.(*map[string]any)
	if !ok {
		return yaml.Unmarshal(data, v)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("metadata block must be a mapping, got %s", root.ShortTag())
	}

	decoded := make(map[string]any, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, node := root.Content[i], root.Content[i+1]
		var (
			value any
			err   error
		)
		if textFields[key.Value] {
			value, err = sourceText(node)
		} else {
			err = node.Decode(&value)
		}
		if err != nil {
			return fmt.Errorf("decode %s: %w", key.Value, err)
		}
		decoded[key.Value] = value
	}
	*out = decoded
	return nil
}

// sourceText returns scalars as written and sequences as lists of scalars.
// Mappings decode normally and are rejected later by the field checks.
func sourceText(node *yaml.Node) (any, error) {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return nil, nil
		}
		return node.Value, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := sourceText(child)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	default:
		var value any
		err := node.Decode(&value)
		return value, err
	}
}
