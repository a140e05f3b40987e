// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package memlane

import (
	"io"
	"log/slog"

	"github.com/poiesic/memlane/ai"
	"github.com/poiesic/memlane/ai/openai"
	"github.com/poiesic/memlane/config"
	"github.com/poiesic/memlane/core"
	"github.com/poiesic/memlane/enrichment"
	"github.com/poiesic/memlane/ingestion"
	"github.com/poiesic/memlane/reenrich"
	"github.com/poiesic/memlane/search"
	"github.com/poiesic/memlane/storage"
	"github.com/poiesic/memlane/storage/badger"
	"github.com/poiesic/memlane/tagging"
)

// Database wires the item store, AI services, enricher and embedding cache together.
type Database struct {
	backend  *badger.Backend
	itemRepo storage.ItemRepository
	provider ai.AIProvider
	tagger   *tagging.Tagger
	enricher enrichment.Enricher
	cache    *search.EmbeddingCache
	options  *databaseOptions
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig        *ai.Config
	inMemory        bool
	workers         int
	queueSize       int
	quickInputLimit int
	keywordLimit    int
	threshold       float64
	logger          *slog.Logger
}

// WithAIConfig sets the AI service configuration. Live mode enables the
// model-backed enricher; otherwise enrichment is heuristic only.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithInMemory keeps the store in memory. The file path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// WithEnrichmentWorkers sets the background worker count and queue size.
func WithEnrichmentWorkers(workers, queueSize int) DatabaseOption {
	return func(o *databaseOptions) {
		o.workers = workers
		o.queueSize = queueSize
	}
}

// WithQuickInputLimit caps the runes the capture-time heuristic pass reads.
func WithQuickInputLimit(n int) DatabaseOption {
	return func(o *databaseOptions) {
		o.quickInputLimit = n
	}
}

// WithKeywordLimit caps the keywords the heuristic tagger extracts.
func WithKeywordLimit(n int) DatabaseOption {
	return func(o *databaseOptions) {
		o.keywordLimit = n
	}
}

// WithSimilarityThreshold sets the cosine threshold for semantic tag matches.
func WithSimilarityThreshold(t float64) DatabaseOption {
	return func(o *databaseOptions) {
		o.threshold = t
	}
}

// OptionsFromConfig translates a loaded configuration into database options.
func OptionsFromConfig(cfg *config.Config) []DatabaseOption {
	opts := []DatabaseOption{
		WithAIConfig(cfg.AIConfig()),
		WithEnrichmentWorkers(cfg.Pipeline.Workers, cfg.Pipeline.QueueSize),
		WithQuickInputLimit(cfg.Pipeline.QuickInputLimit),
		WithKeywordLimit(cfg.Pipeline.KeywordLimit),
		WithSimilarityThreshold(cfg.Search.Threshold),
	}
	if cfg.Database.InMemory {
		opts = append(opts, WithInMemory())
	}
	return opts
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig:        ai.DefaultConfig(), // Default if not provided
		workers:         ingestion.DefaultWorkers,
		queueSize:       ingestion.DefaultQueueSize,
		quickInputLimit: ingestion.DefaultQuickInputLimit,
		keywordLimit:    core.DefaultKeywordLimit,
		threshold:       search.DefaultSimilarityThreshold,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	logger := options.logger.With("component", "database")

	// Open backend
	path := filePath
	if options.inMemory {
		path = ""
	}
	backend, err := badger.OpenBackend(path, options.inMemory, options.logger)
	if err != nil {
		return nil, err
	}

	itemRepo, err := badger.NewItemRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		itemRepo.Close()
		backend.Close()
		return nil, err
	}

	tagger := tagging.New(tagging.WithKeywordLimit(options.keywordLimit))

	var enricher enrichment.Enricher
	if options.aiConfig.Live {
		enricher, err = enrichment.NewAdapter(provider.Summarizer(), provider.Tagger(),
			enrichment.WithLogger(options.logger),
			enrichment.WithHeuristicTagger(tagger),
		)
		if err != nil {
			provider.Close()
			itemRepo.Close()
			backend.Close()
			return nil, err
		}
	} else {
		enricher = enrichment.NewHeuristic(tagger)
	}

	cache, err := search.NewEmbeddingCache(itemRepo, provider.Embedder(), search.WithCacheLogger(options.logger))
	if err != nil {
		provider.Close()
		itemRepo.Close()
		backend.Close()
		return nil, err
	}

	logger.Info("database opened", "path", path, "in_memory", options.inMemory, "live", options.aiConfig.Live)

	return &Database{
		backend:  backend,
		itemRepo: itemRepo,
		provider: provider,
		tagger:   tagger,
		enricher: enricher,
		cache:    cache,
		options:  options,
		logger:   logger,
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.itemRepo.Close(); err != nil {
		db.logger.Error("error closing item repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ItemRepository() storage.ItemRepository {
	return db.itemRepo
}

// EmbeddingCache returns the shared per-user tag embedding cache.
func (db *Database) EmbeddingCache() *search.EmbeddingCache {
	return db.cache
}

// Enricher returns the background enricher selected by the AI configuration.
func (db *Database) Enricher() enrichment.Enricher {
	return db.enricher
}

// NewPipeline creates a capture pipeline that invalidates the embedding cache on every change.
// The caller must Close the pipeline before closing the database.
func (db *Database) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	base := []ingestion.Option{
		ingestion.WithLogger(db.options.logger),
		ingestion.WithWorkers(db.options.workers),
		ingestion.WithQueueSize(db.options.queueSize),
		ingestion.WithQuickInputLimit(db.options.quickInputLimit),
		ingestion.WithTagger(db.tagger),
		ingestion.WithInvalidator(db.cache),
	}
	return ingestion.NewPipeline(db.itemRepo, db.enricher, append(base, opts...)...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	matcher, err := search.NewMatcher(db.cache, db.provider.Embedder(), db.options.logger)
	if err != nil {
		return nil, err
	}
	base := []search.Option{
		search.WithLogger(db.options.logger),
		search.WithMatcher(matcher),
		search.WithThreshold(db.options.threshold),
	}
	return search.NewSearcher(db.itemRepo, append(base, opts...)...)
}

// NewReenricher creates a recovery run over unprocessed and failed items.
// Every stored result invalidates the owner's embedding snapshot.
func (db *Database) NewReenricher(cfg *reenrich.Config, progress io.Writer) (*reenrich.Reenricher, error) {
	if cfg == nil {
		cfg = reenrich.DefaultConfig()
	}
	onWrite := cfg.OnWrite
	cfg.OnWrite = func(userID core.ID) {
		db.cache.Invalidate(userID)
		if onWrite != nil {
			onWrite(userID)
		}
	}
	return reenrich.NewReenricher(db.itemRepo, db.enricher, cfg, progress)
}
