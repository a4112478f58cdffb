// Package ingest loads reference documents into the vector store used for
// resume analysis.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"alfredoptarigan/resume-analyzer/internal/services"
)

// Manifest lists the reference documents to ingest.
type Manifest struct {
	ChunkSize    int        `yaml:"chunk_size"`
	ChunkOverlap int        `yaml:"chunk_overlap"`
	Documents    []Document `yaml:"documents"`
}

// manifestFile mirrors Manifest with an optional overlap, so an explicit
// chunk_overlap: 0 can be told apart from an absent one.
type manifestFile struct {
	ChunkSize    int        `yaml:"chunk_size"`
	ChunkOverlap *int       `yaml:"chunk_overlap"`
	Documents    []Document `yaml:"documents"`
}

type Document struct {
	// ID identifies the document in the vector store; defaults to the file name.
	ID      string `yaml:"id"`
	Path    string `yaml:"path"`
	DocType string `yaml:"doc_type"`
	Name    string `yaml:"name"`
}

var knownDocTypes = map[string]bool{
	services.DocTypeRoleProfile:   true,
	services.DocTypeCourseCatalog: true,
}

// LoadManifest reads a manifest file. Relative document paths are resolved
// against the manifest's directory.
func LoadManifest(manifestPath string) (*Manifest, error) {
	cleanPath := filepath.Clean(manifestPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	manifest, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(cleanPath)
	for i := range manifest.Documents {
		if !filepath.IsAbs(manifest.Documents[i].Path) {
			manifest.Documents[i].Path = filepath.Join(baseDir, manifest.Documents[i].Path)
		}
	}

	return manifest, nil
}

// ParseManifest decodes and validates manifest YAML, filling in defaults.
func ParseManifest(data []byte) (*Manifest, error) {
	var file manifestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	manifest := Manifest{
		ChunkSize:    file.ChunkSize,
		ChunkOverlap: 200,
		Documents:    file.Documents,
	}
	if manifest.ChunkSize <= 0 {
		manifest.ChunkSize = 1000
	}
	if file.ChunkOverlap != nil {
		if *file.ChunkOverlap < 0 {
			return nil, fmt.Errorf("chunk_overlap must not be negative")
		}
		manifest.ChunkOverlap = *file.ChunkOverlap
	}
	if len(manifest.Documents) == 0 {
		return nil, fmt.Errorf("manifest lists no documents")
	}

	for i := range manifest.Documents {
		doc := &manifest.Documents[i]
		if doc.Path == "" {
			return nil, fmt.Errorf("document %d: path is required", i+1)
		}
		if !knownDocTypes[doc.DocType] {
			return nil, fmt.Errorf("document %s: unknown doc_type %q", doc.Path, doc.DocType)
		}
		if doc.ID == "" {
			base := filepath.Base(doc.Path)
			doc.ID = strings.TrimSuffix(base, filepath.Ext(base))
		}
		if doc.Name == "" {
			doc.Name = doc.ID
		}
	}

	return &manifest, nil
}
