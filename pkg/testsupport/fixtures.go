// Package testsupport holds fixture helpers shared by devblog tests.
package testsupport

import (
	"encoding/json"
	"os"
	"testing/fstest"
)

// LoadFixture reads a fixture file verbatim.
func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// LoadGolden decodes the JSON golden file at path into v.
func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// ContentFS builds an in-memory content tree from path to file text, laid
// out as <category>/<file>.md.
func ContentFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, text := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(text), Mode: 0o644}
	}
	return fsys
}

// Entry renders a content file with a YAML frontmatter block. Tags are
// written as a flow sequence; an empty date is omitted.
func Entry(title, date string, tags []string, body string) string {
	out := "---\n"
	if title != "" {
		out += "title: " + quote(title) + "\n"
	}
	if date != "" {
		out += "date: " + quote(date) + "\n"
	}
	if len(tags) > 0 {
		out += "tags: ["
		for i, tag := range tags {
			if i > 0 {
				out += ", "
			}
			out += quote(tag)
		}
		out += "]\n"
	}
	return out + "---\n" + body
}

func quote(value string) string {
	data, _ := json.Marshal(value)
	return string(data)
}
