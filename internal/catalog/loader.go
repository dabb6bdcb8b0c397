package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileExercise is the YAML representation of one exercise. The shape-specific
// sections are decoded lazily so only the one matching `kind` is read.
type fileExercise struct {
	Ordinal      int       `yaml:"ordinal"`
	Title        string    `yaml:"title"`
	Instructions string    `yaml:"instructions"`
	Kind         Kind      `yaml:"kind"`
	Body         yaml.Node `yaml:"body"`
}

type courseFile struct {
	Exercises []fileExercise `yaml:"exercises"`
}

// Load reads a course definition from a YAML file. Pass an empty path to get
// the built-in course.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Builtin(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read course file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML course definition.
func Parse(data []byte) (*Catalog, error) {
	var file courseFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("catalog: parse course file: %w", err)
	}

	exercises := make([]*Exercise, 0, len(file.Exercises))
	for _, fe := range file.Exercises {
		body, err := decodeBody(fe.Kind, &fe.Body)
		if err != nil {
			return nil, fmt.Errorf("catalog: exercise %d: %w", fe.Ordinal, err)
		}
		exercises = append(exercises, &Exercise{
			Ordinal:      fe.Ordinal,
			Title:        fe.Title,
			Instructions: fe.Instructions,
			Body:         body,
		})
	}
	return New(exercises)
}

func decodeBody(kind Kind, node *yaml.Node) (Body, error) {
	if node.Kind == 0 {
		return nil, fmt.Errorf("missing body")
	}
	switch kind {
	case KindSequential:
		var b Sequential
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return &b, nil
	case KindMatching:
		var b Matching
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return &b, nil
	case KindFreeResponse:
		var b FreeResponse
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return &b, nil
	case KindComprehension:
		var b Comprehension
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return &b, nil
	default:
		return nil, fmt.Errorf("unknown exercise kind %q", kind)
	}
}
