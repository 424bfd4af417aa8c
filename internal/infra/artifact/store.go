// Package artifact persists pipeline checkpoints: one JSON document per
// generation, ordered by ascending scene_id, written atomically so a
// reader never observes a partial document.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/setfreedom/moivetext/internal/domain/entity"
)

const SchemaVersion = 1

const (
	generationScenes   = "scenes"
	generationEnriched = "scenes_enriched"
)

type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	Generation    string          `json:"generation"`
	Scenes        json.RawMessage `json:"scenes"`
}

// Store reads and writes checkpoint documents on the local filesystem.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) WriteScenes(path string, scenes []entity.SceneRecord) error {
	if err := entity.ValidateSceneOrder(scenes); err != nil {
		return fmt.Errorf("refusing to write checkpoint: %w", err)
	}
	return s.write(path, generationScenes, scenes)
}

func (s *Store) ReadScenes(path string) ([]entity.SceneRecord, error) {
	raw, err := s.read(path, generationScenes)
	if err != nil {
		return nil, err
	}
	var scenes []entity.SceneRecord
	if err := json.Unmarshal(raw, &scenes); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrMalformedArtifact, path, err)
	}
	if err := entity.ValidateSceneOrder(scenes); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrMalformedArtifact, path, err)
	}
	return scenes, nil
}

func (s *Store) WriteEnriched(path string, scenes []entity.EnrichedSceneRecord) error {
	if err := entity.ValidateEnrichedOrder(scenes); err != nil {
		return fmt.Errorf("refusing to write checkpoint: %w", err)
	}
	return s.write(path, generationEnriched, scenes)
}

func (s *Store) ReadEnriched(path string) ([]entity.EnrichedSceneRecord, error) {
	raw, err := s.read(path, generationEnriched)
	if err != nil {
		return nil, err
	}
	var scenes []entity.EnrichedSceneRecord
	if err := json.Unmarshal(raw, &scenes); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrMalformedArtifact, path, err)
	}
	if err := entity.ValidateEnrichedOrder(scenes); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrMalformedArtifact, path, err)
	}
	return scenes, nil
}

// write marshals the envelope and renames a temp file over the target, so
// concurrent readers see either the old or the new checkpoint, never a
// torn one.
func (s *Store) write(path, generation string, scenes any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// Keep non-ASCII text (subtitles, transcripts) verbatim.
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	raw, err := json.Marshal(scenes)
	if err != nil {
		return fmt.Errorf("marshal scenes: %w", err)
	}
	doc := envelope{SchemaVersion: SchemaVersion, Generation: generation, Scenes: raw}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp checkpoint: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename checkpoint: %w", err)
	}
	return nil
}

func (s *Store) read(path, wantGeneration string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: checkpoint %s", entity.ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("read checkpoint %s: %w", path, err)
	}

	var doc envelope
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrMalformedArtifact, path, err)
	}
	if doc.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: %s: schema_version %d, want %d",
			entity.ErrMalformedArtifact, path, doc.SchemaVersion, SchemaVersion)
	}
	if doc.Generation != wantGeneration {
		return nil, fmt.Errorf("%w: %s: generation %q, want %q",
			entity.ErrMalformedArtifact, path, doc.Generation, wantGeneration)
	}
	return doc.Scenes, nil
}
