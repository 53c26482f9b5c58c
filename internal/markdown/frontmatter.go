package markdown

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-devblog/pkg/interfaces"
)

// fences maps every opening delimiter github.com/adrg/frontmatter accepts to
// the line that closes it.
var fences = map[string]string{
	"---":     "---",
	"---yaml": "---",
	"---toml": "---",
	"---json": "---",
	"+++":     "+++",
	";;;":     ";;;",
}

// formats mirrors the adrg/frontmatter defaults with YAML decoded by
// unmarshalYAML instead of yaml.v2, whose YAML 1.1 rules turn yes/no/on/off
// into booleans.
var formats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", unmarshalYAML),
	frontmatter.NewFormat("---yaml", "---", unmarshalYAML),
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
	frontmatter.NewFormat("---toml", "---", toml.Unmarshal),
	frontmatter.NewFormat(";;;", ";;;", json.Unmarshal),
	frontmatter.NewFormat("---json", "---", json.Unmarshal),
	{Start: "{", End: "}", Unmarshal: json.Unmarshal, UnmarshalDelims: true, RequiresNewLine: true},
}

// dateLayouts lists the ISO-8601 shapes accepted for the date field.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseFrontMatter splits source into its metadata block and Markdown body
// and decodes the block into a Frontmatter. A file without a block yields an
// empty Frontmatter and the full source as body; required fields are checked
// by Parse, not here.
func ParseFrontMatter(source []byte) (interfaces.Frontmatter, []byte, error) {
	source = bytes.TrimPrefix(source, []byte("\ufeff"))
	if err := checkTerminated(source); err != nil {
		return interfaces.Frontmatter{}, nil, err
	}

	var raw map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(source), &raw, formats...)
	if err != nil {
		return interfaces.Frontmatter{}, nil, fmt.Errorf("%w: %v", ErrFrontmatterInvalid, err)
	}

	fm, err := decodeFrontmatter(raw)
	if err != nil {
		return interfaces.Frontmatter{}, nil, err
	}
	return fm, body, nil
}

// checkTerminated rejects a block whose opening fence never closes. Without
// this check the decoder would treat the whole file as body.
func checkTerminated(source []byte) error {
	lines := strings.Split(string(source), "\n")
	start := 0
	// Blank lines before the opening fence are tolerated, as adrg/frontmatter
	// does.
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start == len(lines) {
		return nil
	}
	closing, ok := fences[strings.TrimRight(lines[start], " \t\r")]
	if !ok {
		return nil
	}
	for _, line := range lines[start+1:] {
		if strings.TrimRight(line, " \t\r") == closing {
			return nil
		}
	}
	return ErrFrontmatterUnterminated
}

func decodeFrontmatter(raw map[string]any) (interfaces.Frontmatter, error) {
	fm := interfaces.Frontmatter{Published: true}
	var err error

	for key, value := range raw {
		switch key {
		case "title":
			fm.Title, err = scalarString(key, value)
		case "date":
			fm.Date, err = dateString(value)
		case "author":
			fm.Author, err = scalarString(key, value)
		case "description":
			fm.Description, err = scalarString(key, value)
		case "tags":
			fm.Tags, err = stringList(key, value)
		case "published":
			fm.Published, err = boolValue(key, value)
		default:
			if fm.Extra == nil {
				fm.Extra = make(map[string]any)
			}
			fm.Extra[key] = normalizeValue(value)
		}
		if err != nil {
			return interfaces.Frontmatter{}, err
		}
	}

	if fm.Date != "" {
		fm.PublishedAt, err = ParseDate(fm.Date)
		if err != nil {
			return interfaces.Frontmatter{}, err
		}
	}
	return fm, nil
}

// ParseDate parses an ISO-8601 date or timestamp. Values without a zone are
// read as UTC.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrDateInvalid, value)
}

func scalarString(field string, value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int, int64, uint64, float64:
		return fmt.Sprint(v), nil
	case time.Time:
		return formatDate(v), nil
	default:
		return "", fieldTypeError(field, value)
	}
}

func dateString(value any) (string, error) {
	if ts, ok := value.(time.Time); ok {
		return formatDate(ts), nil
	}
	return scalarString("date", value)
}

func formatDate(ts time.Time) string {
	if ts.Hour() == 0 && ts.Minute() == 0 && ts.Second() == 0 && ts.Nanosecond() == 0 && ts.Location() == time.UTC {
		return ts.Format(time.DateOnly)
	}
	return ts.Format(time.RFC3339)
}

func stringList(field string, value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, err := scalarString(field, item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fieldTypeError(field, value)
	}
}

func boolValue(field string, value any) (bool, error) {
	switch v := value.(type) {
	case nil:
		return true, nil
	case bool:
		return v, nil
	default:
		return false, fieldTypeError(field, value)
	}
}

// normalizeValue converts any map[any]any values into map[string]any so
// Extra stays JSON encodable.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
