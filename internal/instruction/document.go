package instruction

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an on-disk encoding for a single instruction document.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var ErrUnknownFormat = errors.New("unknown document format")

// FormatFromPath picks a format from a file extension, defaulting to text.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatText
	}
}

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatYAML, FormatJSON:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// UnmarshalYAML accepts either a mapping or a bare authored line such as
// "Stretch (30)".
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*s = ParseStep(node.Value)
		return nil
	}

	type plain Step

	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Step(p)

	return nil
}

// Unmarshal decodes one instruction document. Plain text documents use the
// first non-blank line as the title and the remaining lines as steps.
func Unmarshal(data []byte, format Format) (Instruction, error) {
	var inst Instruction

	switch format {
	case FormatText:
		title, body, _ := strings.Cut(strings.TrimLeft(string(data), " \t\r\n"), "\n")
		inst.Title = strings.TrimSpace(title)
		inst.Steps = ParseSteps(body)
	case FormatYAML:
		if err := yaml.Unmarshal(data, &inst); err != nil {
			return Instruction{}, fmt.Errorf("decoding yaml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &inst); err != nil {
			return Instruction{}, fmt.Errorf("decoding json: %w", err)
		}
	default:
		return Instruction{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return inst, nil
}

// Marshal encodes one instruction document.
func Marshal(inst Instruction, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(inst.Title + "\n" + FormatSteps(inst.Steps) + "\n"), nil
	case FormatYAML:
		out, err := yaml.Marshal(inst)
		if err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}

		return out, nil
	case FormatJSON:
		out, err := json.MarshalIndent(inst, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json: %w", err)
		}

		return append(out, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
