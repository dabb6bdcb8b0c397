// Package catalog holds the immutable exercise course definitions.
// Exercises come in a closed set of shapes; everything that varies by shape
// hangs off the Body interface so the dialogue engine can dispatch without
// switching on magic integers.
package catalog

import (
	"fmt"
	"sort"
)

// Kind identifies an exercise shape.
type Kind string

const (
	KindSequential    Kind = "sequential"
	KindMatching      Kind = "matching"
	KindFreeResponse  Kind = "free_response"
	KindComprehension Kind = "comprehension"
)

// Prompt is a single scored question with its accepted answers.
type Prompt struct {
	Text     string   `yaml:"text"`
	Accepted []string `yaml:"accepted"`
}

// Body is the shape-specific part of an exercise definition.
type Body interface {
	Kind() Kind
	// ItemCount is the number of submissions needed to finish the exercise.
	ItemCount() int
	// TotalPoints is the denominator of the completion summary.
	TotalPoints() int
	Validate() error
}

// Sequential asks ordered prompts one by one. In pronunciation mode the
// prompt text is a sentence to read aloud and grading uses banded feedback
// instead of an accepted-answer lookup.
type Sequential struct {
	Pronunciation bool     `yaml:"pronunciation"`
	Prompts       []Prompt `yaml:"prompts"`
}

func (s *Sequential) Kind() Kind       { return KindSequential }
func (s *Sequential) ItemCount() int   { return len(s.Prompts) }
func (s *Sequential) TotalPoints() int { return len(s.Prompts) }

func (s *Sequential) Validate() error {
	if len(s.Prompts) == 0 {
		return fmt.Errorf("sequential exercise has no prompts")
	}
	for i, p := range s.Prompts {
		if p.Text == "" {
			return fmt.Errorf("prompt %d has empty text", i+1)
		}
		if !s.Pronunciation && len(p.Accepted) == 0 {
			return fmt.Errorf("prompt %d has no accepted answers", i+1)
		}
	}
	return nil
}

// MatchItem is one labeled item to pair against a numbered target.
type MatchItem struct {
	Label string `yaml:"label"`
	Text  string `yaml:"text"`
}

// Target is one numbered pairing target.
type Target struct {
	Number int    `yaml:"number"`
	Text   string `yaml:"text"`
}

// Matching pairs labeled items against numbered targets. The whole exercise
// is answered with a single comma-separated submission like "A-4, B-1".
type Matching struct {
	Items   []MatchItem      `yaml:"items"`
	Targets []Target         `yaml:"targets"`
	Key     map[string][]int `yaml:"key"`
}

func (m *Matching) Kind() Kind       { return KindMatching }
func (m *Matching) ItemCount() int   { return 1 }
func (m *Matching) TotalPoints() int { return len(m.Key) }

func (m *Matching) Validate() error {
	if len(m.Items) == 0 || len(m.Targets) == 0 {
		return fmt.Errorf("matching exercise needs items and targets")
	}
	if len(m.Key) == 0 {
		return fmt.Errorf("matching exercise has an empty answer key")
	}
	labels := make(map[string]bool, len(m.Items))
	for _, it := range m.Items {
		if it.Label == "" {
			return fmt.Errorf("matching item with empty label")
		}
		if labels[it.Label] {
			return fmt.Errorf("duplicate matching label %q", it.Label)
		}
		labels[it.Label] = true
	}
	for label, targets := range m.Key {
		if !labels[label] {
			return fmt.Errorf("answer key references unknown label %q", label)
		}
		if len(targets) == 0 {
			return fmt.Errorf("answer key for label %q is empty", label)
		}
	}
	return nil
}

// FreeResponse is a prompt that is acknowledged, not graded.
type FreeResponse struct {
	Prompt string `yaml:"prompt"`
}

func (f *FreeResponse) Kind() Kind       { return KindFreeResponse }
func (f *FreeResponse) ItemCount() int   { return 1 }
func (f *FreeResponse) TotalPoints() int { return 0 }

func (f *FreeResponse) Validate() error {
	if f.Prompt == "" {
		return fmt.Errorf("free response exercise has empty prompt")
	}
	return nil
}

// Comprehension is a reading passage followed by sequential prompts whose
// answers are accepted by containment.
type Comprehension struct {
	Passage string   `yaml:"passage"`
	Prompts []Prompt `yaml:"prompts"`
}

func (c *Comprehension) Kind() Kind       { return KindComprehension }
func (c *Comprehension) ItemCount() int   { return len(c.Prompts) }
func (c *Comprehension) TotalPoints() int { return len(c.Prompts) }

func (c *Comprehension) Validate() error {
	if c.Passage == "" {
		return fmt.Errorf("comprehension exercise has empty passage")
	}
	if len(c.Prompts) == 0 {
		return fmt.Errorf("comprehension exercise has no prompts")
	}
	for i, p := range c.Prompts {
		if p.Text == "" {
			return fmt.Errorf("prompt %d has empty text", i+1)
		}
		if len(p.Accepted) == 0 {
			return fmt.Errorf("prompt %d has no accepted answers", i+1)
		}
	}
	return nil
}

// Exercise is one course entry addressed by its stable ordinal.
type Exercise struct {
	Ordinal      int
	Title        string
	Instructions string
	Body         Body
}

// Catalog is the validated, ordinal-addressable course.
type Catalog struct {
	byOrdinal map[int]*Exercise
	ordered   []*Exercise
}

// New validates the exercises and builds a catalog. Ordinals must form a
// contiguous 1..N range.
func New(exercises []*Exercise) (*Catalog, error) {
	if len(exercises) == 0 {
		return nil, fmt.Errorf("catalog: no exercises")
	}
	byOrdinal := make(map[int]*Exercise, len(exercises))
	for _, ex := range exercises {
		if ex.Body == nil {
			return nil, fmt.Errorf("catalog: exercise %d has no body", ex.Ordinal)
		}
		if ex.Title == "" {
			return nil, fmt.Errorf("catalog: exercise %d has no title", ex.Ordinal)
		}
		if _, dup := byOrdinal[ex.Ordinal]; dup {
			return nil, fmt.Errorf("catalog: duplicate ordinal %d", ex.Ordinal)
		}
		if err := ex.Body.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: exercise %d (%s): %w", ex.Ordinal, ex.Title, err)
		}
		byOrdinal[ex.Ordinal] = ex
	}
	for i := 1; i <= len(exercises); i++ {
		if _, ok := byOrdinal[i]; !ok {
			return nil, fmt.Errorf("catalog: ordinals not contiguous, missing %d", i)
		}
	}
	ordered := make([]*Exercise, len(exercises))
	copy(ordered, exercises)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Ordinal < ordered[j].Ordinal })
	return &Catalog{byOrdinal: byOrdinal, ordered: ordered}, nil
}

// Get returns the exercise with the given ordinal.
func (c *Catalog) Get(ordinal int) (*Exercise, bool) {
	ex, ok := c.byOrdinal[ordinal]
	return ex, ok
}

// Len returns the number of exercises in the course.
func (c *Catalog) Len() int { return len(c.ordered) }

// All returns the exercises in ordinal order.
func (c *Catalog) All() []*Exercise { return c.ordered }
