package model

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultDocuments are loaded before any user override unless disabled.
var DefaultDocuments = []string{"BaseModel.json", "RealisticModel.json"}

// Load reads the parameter documents in order and merges them key by key at
// the top level: a later document replaces a whole top-level key of an
// earlier one. The merged document is then decoded strictly and validated.
func Load(paths []string) (*Parameters, error) {
	if len(paths) == 0 {
		return nil, &ConfigurationError{Problems: []string{"no parameter documents given"}}
	}
	merged := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading parameter document: %w", err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return nil, err
		}
		overlay(merged, doc)
		logrus.Infof("Loaded parameter document %s (%d keys)", path, len(doc.Content)/2)
	}
	data, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("re-encoding merged parameters: %w", err)
	}
	return Parse(data, strings.Join(paths, ","))
}

// Parse decodes a single document into Parameters with strict field checking,
// applies defaults and validates the result.
func Parse(data []byte, source string) (*Parameters, error) {
	var p Parameters
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil {
		return nil, &ConfigurationError{Source: source, Problems: []string{err.Error()}}
	}
	p.applyDefaults()
	if err := p.Validate(); err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			cfgErr.Source = source
		}
		return nil, err
	}
	logrus.Debugf("Parameters: horizon %d-%d, %d tiers, %d eras", p.StartYear, p.EndYear, len(p.TierSizes), len(p.MCEvolution))
	return &p, nil
}

func parseDocument(data []byte, source string) (*yaml.Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, configError(source, "parsing document: %v", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, configError(source, "document is empty")
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, configError(source, "top level must be an object")
	}
	return doc, nil
}

// overlay replaces or appends every top-level key of src into dst.
func overlay(dst, src *yaml.Node) {
	for i := 0; i+1 < len(src.Content); i += 2 {
		key, value := src.Content[i], src.Content[i+1]
		replaced := false
		for j := 0; j+1 < len(dst.Content); j += 2 {
			if dst.Content[j].Value == key.Value {
				dst.Content[j+1] = value
				replaced = true
				break
			}
		}
		if !replaced {
			dst.Content = append(dst.Content, key, value)
		}
	}
}
