package port

import "context"

// Bundler packs result files into a single downloadable archive.
type Bundler interface {
	CreateZip(ctx context.Context, filePaths []string, outputPath string) error
}
