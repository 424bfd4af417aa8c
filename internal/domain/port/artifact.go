package port

import "github.com/setfreedom/moivetext/internal/domain/entity"

// ArtifactStore persists one generation of scene records as a single
// checkpoint document. Writes are atomic from the reader's perspective;
// reads validate ordering and return entity.ErrMalformedArtifact or
// entity.ErrInputNotFound so dependent stages can abort cleanly.
type ArtifactStore interface {
	WriteScenes(path string, scenes []entity.SceneRecord) error
	ReadScenes(path string) ([]entity.SceneRecord, error)
	WriteEnriched(path string, scenes []entity.EnrichedSceneRecord) error
	ReadEnriched(path string) ([]entity.EnrichedSceneRecord, error)
}
