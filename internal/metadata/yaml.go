package metadata

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/dataextract/internal/domain/element"
)

// yamlDocument is the on-disk layout:
//
//	classes:
//	  demo.Customer:
//	    - fields: name, customer.name
//	      getter: Name
//	    - fields: customer.since
//	      getter: Since
//	      type: datetime
type yamlDocument struct {
	Classes map[string][]map[string]string `yaml:"classes"`
}

// YAMLReader serves elements declared in YAML mapping files.
type YAMLReader struct {
	elements map[string][]element.Element
}

// ParseYAML validates every entry of a YAML mapping document.
func ParseYAML(data []byte) (*YAMLReader, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse metadata yaml: %w", err)
	}

	r := &YAMLReader{elements: make(map[string][]element.Element, len(doc.Classes))}
	for class, entries := range doc.Classes {
		for i, values := range entries {
			el, err := element.Parse(values)
			if err != nil {
				return nil, fmt.Errorf("class %s entry %d: %w", class, i, err)
			}
			r.elements[class] = append(r.elements[class], el)
		}
	}
	return r, nil
}

// LoadYAML reads and parses a YAML mapping file.
func LoadYAML(path string) (*YAMLReader, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read metadata %s: %w", path, err)
	}
	r, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Elements returns the elements declared for class. Unknown classes have none.
func (r *YAMLReader) Elements(class string) ([]element.Element, error) {
	return r.elements[class], nil
}

// Reader is a declarative metadata source.
type Reader interface {
	Elements(class string) ([]element.Element, error)
}

// Chain concatenates the elements of several readers, in reader order.
type Chain []Reader

// Elements implements Reader.
func (c Chain) Elements(class string) ([]element.Element, error) {
	var out []element.Element
	for _, r := range c {
		els, err := r.Elements(class)
		if err != nil {
			return nil, err
		}
		out = append(out, els...)
	}
	return out, nil
}
