package dataset

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrLastClass is returned when removing the only remaining class.
	ErrLastClass = errors.New("at least one class is required")
	// ErrEmptyClassName is returned for blank class names.
	ErrEmptyClassName = errors.New("class name is empty")
)

// DefaultClassName seeds a class file that does not exist yet.
const DefaultClassName = "person"

// classNames accepts both the list form and the index-keyed map form of "names".
type classNames []string

func (n *classNames) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*n = list
		return nil
	case yaml.MappingNode:
		var m map[int]string
		if err := value.Decode(&m); err != nil {
			return err
		}
		keys := make([]int, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, m[k])
		}
		*n = out
		return nil
	default:
		return fmt.Errorf("names: unsupported yaml kind %v", value.Kind)
	}
}

type classFile struct {
	NC    int            `yaml:"nc"`
	Names classNames     `yaml:"names"`
	Extra map[string]any `yaml:",inline"`
}

// ClassList is the ordered list of class names stored in a data.yaml file
// (nc + names). Other keys in the file are preserved on save.
type ClassList struct {
	path  string
	names []string
	extra map[string]any
}

// LoadClassList reads path, creating an in-memory default list when the file
// does not exist.
func LoadClassList(path string) (*ClassList, error) {
	c := &ClassList{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.names = []string{DefaultClassName}
			return c, nil
		}
		return nil, fmt.Errorf("read class file: %w", err)
	}
	var f classFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode class file %s: %w", path, err)
	}
	c.names = []string(f.Names)
	c.extra = f.Extra
	return c, nil
}

// Names returns a copy of the class names.
func (c *ClassList) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.names...)
}

// Len returns the number of classes.
func (c *ClassList) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Name returns the name at i or a placeholder for stale ids.
func (c *ClassList) Name(i int) string {
	if c == nil || i < 0 || i >= len(c.names) {
		return fmt.Sprintf("class %d", i)
	}
	return c.names[i]
}

// Add appends a class and returns its index.
func (c *ClassList) Add(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return -1, ErrEmptyClassName
	}
	c.names = append(c.names, name)
	return len(c.names) - 1, nil
}

// Rename changes the name at i.
func (c *ClassList) Rename(i int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyClassName
	}
	if i < 0 || i >= len(c.names) {
		return fmt.Errorf("rename class: index %d out of range", i)
	}
	c.names[i] = name
	return nil
}

// Remove deletes the class at i. The last class cannot be removed.
func (c *ClassList) Remove(i int) error {
	if i < 0 || i >= len(c.names) {
		return fmt.Errorf("remove class: index %d out of range", i)
	}
	if len(c.names) == 1 {
		return ErrLastClass
	}
	c.names = append(c.names[:i], c.names[i+1:]...)
	return nil
}

// Save writes nc and names back to the class file.
func (c *ClassList) Save() error {
	f := classFile{NC: len(c.names), Names: c.names, Extra: c.extra}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("encode class file: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write class file: %w", err)
	}
	return nil
}
