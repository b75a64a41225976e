// Package tutorial holds the curriculum and loads generated tutorial documents.
package tutorial

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed curriculum.yaml
var defaultYAML []byte

// Difficulty 课程难度
type Difficulty string

const (
	Basics       Difficulty = "Basics"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
	Expert       Difficulty = "Expert"
)

func (d Difficulty) valid() bool {
	switch d {
	case Basics, Intermediate, Advanced, Expert:
		return true
	}
	return false
}

// Topic is one lesson of the curriculum.
type Topic struct {
	ID         string     `yaml:"id" json:"id"`
	Title      string     `yaml:"title" json:"title"`
	Difficulty Difficulty `yaml:"-" json:"difficulty"`
	Prompt     string     `yaml:"prompt" json:"prompt"`
}

// Module groups the topics of one difficulty.
type Module struct {
	Difficulty Difficulty `yaml:"difficulty" json:"difficulty"`
	Topics     []Topic    `yaml:"topics" json:"topics"`
}

// Curriculum is the ordered list of modules.
type Curriculum []Module

// ErrNoTopic is returned when a topic id is unknown or no topic is selected.
var ErrNoTopic = errors.New("tutorial: no such topic")

// LoadCurriculum decodes a YAML curriculum. Topic ids must be unique and
// every topic needs a prompt.
func LoadCurriculum(r io.Reader) (Curriculum, error) {
	var c Curriculum
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("tutorial: curriculum is empty")
		}
		return nil, fmt.Errorf("tutorial: decode curriculum: %w", err)
	}

	seen := make(map[string]bool)
	for i := range c {
		m := &c[i]
		if !m.Difficulty.valid() {
			return nil, fmt.Errorf("tutorial: module %d: unknown difficulty %q", i, m.Difficulty)
		}
		for j := range m.Topics {
			t := &m.Topics[j]
			t.Difficulty = m.Difficulty
			switch {
			case t.ID == "":
				return nil, fmt.Errorf("tutorial: %s topic %d has no id", m.Difficulty, j)
			case seen[t.ID]:
				return nil, fmt.Errorf("tutorial: duplicate topic id %q", t.ID)
			case strings.TrimSpace(t.Prompt) == "":
				return nil, fmt.Errorf("tutorial: topic %q has no prompt", t.ID)
			}
			seen[t.ID] = true
		}
	}
	return c, nil
}

var (
	defaultCurriculum     Curriculum
	defaultCurriculumOnce sync.Once
)

// DefaultCurriculum returns the built-in curriculum.
func DefaultCurriculum() Curriculum {
	defaultCurriculumOnce.Do(func() {
		c, err := LoadCurriculum(bytes.NewReader(defaultYAML))
		if err != nil {
			panic(err)
		}
		defaultCurriculum = c
	})
	return defaultCurriculum
}

// Topics returns every topic in curriculum order.
func (c Curriculum) Topics() []Topic {
	var out []Topic
	for _, m := range c {
		out = append(out, m.Topics...)
	}
	return out
}

// Find returns the topic with the given id.
func (c Curriculum) Find(id string) (Topic, error) {
	for _, m := range c {
		for _, t := range m.Topics {
			if t.ID == id {
				return t, nil
			}
		}
	}
	return Topic{}, fmt.Errorf("%w: %q", ErrNoTopic, id)
}

// First returns the opening topic, the default selection.
func (c Curriculum) First() (Topic, bool) {
	for _, m := range c {
		if len(m.Topics) > 0 {
			return m.Topics[0], true
		}
	}
	return Topic{}, false
}
