package catalog

import (
	"context"
	"strings"

	"github.com/cryoscan/cryoscan/pkg/errors"
	"github.com/cryoscan/cryoscan/pkg/logging"
	"github.com/cryoscan/cryoscan/pkg/store"
)

// Builder crawls a remote object store and assembles the catalog.
type Builder struct {
	lister store.Lister
	root   string
	scheme string
}

// NewBuilder creates a builder that crawls the store from root. Record
// URLs are formed as "<scheme>://<path>".
func NewBuilder(lister store.Lister, root, scheme string) *Builder {
	return &Builder{lister: lister, root: root, scheme: scheme}
}

// Build crawls four levels of the store hierarchy (projection,
// institution, model, experiment), collects every .nc file at the leaf
// level, and parses metadata from each path. A listing failure at any
// intermediate level skips that branch and the crawl continues with
// whatever was collected elsewhere; only a failure to list the root is
// returned as an error.
func (b *Builder) Build(ctx context.Context) (*Catalog, error) {
	log := logging.FromContext(ctx)
	log.Info().Str("root", b.root).Msg("Building file catalog")

	projections, err := b.lister.List(ctx, b.root)
	if err != nil {
		return nil, errors.WrapList(b.root, err)
	}

	var files []store.Entry
	for _, proj := range projections {
		if !proj.IsDir || !strings.Contains(proj.Name, "Projection-") {
			continue
		}
		log.Debug().Str("prefix", proj.Name).Msg("Scanning projection")

		institutions, err := b.lister.List(ctx, proj.Name)
		if err != nil {
			log.Warn().Err(err).Str("prefix", proj.Name).Msg("Skipping unreadable subtree")
			continue
		}
		for _, inst := range institutions {
			if !inst.IsDir {
				continue
			}
			models, err := b.lister.List(ctx, inst.Name)
			if err != nil {
				log.Warn().Err(err).Str("prefix", inst.Name).Msg("Skipping unreadable subtree")
				continue
			}
			for _, model := range models {
				if !model.IsDir {
					continue
				}
				experiments, err := b.lister.List(ctx, model.Name)
				if err != nil {
					log.Warn().Err(err).Str("prefix", model.Name).Msg("Skipping unreadable subtree")
					continue
				}
				for _, exp := range experiments {
					if !exp.IsDir {
						continue
					}
					leaves, err := b.lister.List(ctx, exp.Name)
					if err != nil {
						log.Warn().Err(err).Str("prefix", exp.Name).Msg("Skipping unreadable subtree")
						continue
					}
					for _, leaf := range leaves {
						if !leaf.IsDir && strings.HasSuffix(leaf.Name, ".nc") {
							files = append(files, leaf)
						}
					}
				}
			}
		}
	}

	log.Info().Int("files", len(files)).Msg("Parsing file paths")

	records := make([]Record, 0, len(files))
	for _, f := range files {
		rec, ok := ParsePath(b.scheme, f.Name)
		if !ok {
			log.Warn().Str("path", f.Name).Msg("Could not parse path")
			continue
		}
		rec.SizeBytes = f.Size
		records = append(records, rec)
	}

	log.Info().Int("records", len(records)).Msg("Catalog built")
	return New(records), nil
}
