// Package rulepack manages the named regulatory frameworks findings are
// mapped to.
//
// Packs are YAML profiles: a name, a version tag, and focus bullets folded
// into the generation prompt. The built-in packs are embedded; a directory of
// additional YAML files can extend or override them. The pack version is part
// of the cache key, so bumping a pack version naturally invalidates cached
// results for it.
package rulepack

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed packs.yaml
var embeddedPacks []byte

// DefaultPack is used when the caller does not select a pack.
const DefaultPack = "advertising-standards"

// Pack is one regulatory framework profile.
type Pack struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description"`
	Focus       []string `yaml:"focus"`
}

// VersionTag returns the cache-key component for this pack.
func (p Pack) VersionTag() string {
	return p.Name + "@" + p.Version
}

// PromptSection renders the pack's focus areas as prompt instructions.
func (p Pack) PromptSection() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rule pack: %s (version %s). %s\n", p.Name, p.Version, p.Description)
	if len(p.Focus) > 0 {
		b.WriteString("Evaluate the content against these rules:\n")
		for _, f := range p.Focus {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	return b.String()
}

type packFile struct {
	Packs []Pack `yaml:"packs"`
}

// Registry holds the loaded packs.
type Registry struct {
	packs map[string]Pack
}

// Load builds a Registry from the embedded packs plus any YAML files in dir
// (optional; files there override embedded packs with the same name).
func Load(dir string) (*Registry, error) {
	r := &Registry{packs: make(map[string]Pack)}
	if err := r.addYAML(embeddedPacks); err != nil {
		return nil, fmt.Errorf("parsing embedded rule packs: %w", err)
	}
	if dir == "" {
		return r, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("reading rule pack directory: %w", err)
	}
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading rule pack file %s: %w", entry.Name(), err)
		}
		if err := r.addYAML(data); err != nil {
			return nil, fmt.Errorf("parsing rule pack file %s: %w", entry.Name(), err)
		}
	}
	return r, nil
}

func (r *Registry) addYAML(data []byte) error {
	var pf packFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return err
	}
	for _, p := range pf.Packs {
		if p.Name == "" {
			continue
		}
		if p.Version == "" {
			p.Version = "1"
		}
		r.packs[p.Name] = p
	}
	return nil
}

// Get returns the named pack, falling back to the default pack for unknown
// names.
func (r *Registry) Get(name string) Pack {
	if p, ok := r.packs[name]; ok {
		return p
	}
	return r.packs[DefaultPack]
}

// Names lists loaded pack names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.packs))
	for name := range r.packs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
