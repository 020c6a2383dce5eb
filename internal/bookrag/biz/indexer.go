package biz

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/bookrag-io/bookrag/internal/bookrag/store"
	"github.com/bookrag-io/bookrag/internal/model"
	"github.com/bookrag-io/bookrag/internal/pkg/markdown"
	"github.com/bookrag-io/bookrag/internal/pkg/textutil"
	"github.com/bookrag-io/bookrag/pkg/llm"
	"github.com/bookrag-io/bookrag/pkg/log"
	apierrors "github.com/bookrag-io/bookrag/pkg/utils/errors"
)

// IndexerConfig configures ingestion.
type IndexerConfig struct {
	// Collection is the vector collection name.
	Collection string
	// ChunkSize is the target chunk size in characters.
	ChunkSize int
	// ChunkOverlap is the overlap between adjacent chunks.
	ChunkOverlap int
	// MinChunkSize drops fragments below this size.
	MinChunkSize int
	// EmbedBatchSize is the number of texts per embedding call.
	EmbedBatchSize int
}

// Indexer turns markdown sources into embedded chunks in the vector
// store.
type Indexer struct {
	store         store.VectorStore
	embedProvider llm.EmbeddingProvider
	config        *IndexerConfig
}

// NewIndexer creates an Indexer.
func NewIndexer(vectorStore store.VectorStore, embedProvider llm.EmbeddingProvider, config *IndexerConfig) *Indexer {
	return &Indexer{
		store:         vectorStore,
		embedProvider: embedProvider,
		config:        config,
	}
}

// IngestDirectory ingests every markdown file under dir, in lexical
// order. A failing file is recorded in the report and does not stop the
// run; the error is non-nil only when no file could be ingested.
func (ix *Indexer) IngestDirectory(ctx context.Context, bookID, dir string) (*model.IngestReport, error) {
	files, err := listMarkdownFiles(dir)
	if err != nil {
		return nil, apierrors.ErrIngestFailed.WithMessagef("failed to scan %s", dir).WithCause(err)
	}
	if len(files) == 0 {
		return nil, apierrors.ErrIngestFailed.WithMessagef("no markdown files under %s", dir)
	}

	report := &model.IngestReport{BookID: bookID}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			report.Failed = append(report.Failed, model.FileError{SourcePath: rel, Reason: readErr.Error()})
			log.Warnw("skipping unreadable file", "path", rel, "err", readErr)
			continue
		}

		written, ingErr := ix.IngestText(ctx, bookID, rel, string(content))
		if ingErr != nil {
			report.Failed = append(report.Failed, model.FileError{SourcePath: rel, Reason: ingErr.Error()})
			log.Warnw("file ingestion failed", "path", rel, "err", ingErr)
			continue
		}

		report.FilesProcessed++
		report.ChunksWritten += written
	}

	if report.FilesProcessed == 0 {
		return report, apierrors.ErrIngestFailed.WithMessagef("all %d files failed", len(files))
	}

	log.Infow("ingestion finished",
		"book_id", bookID,
		"files", report.FilesProcessed,
		"chunks", report.ChunksWritten,
		"failed", len(report.Failed),
	)
	return report, nil
}

// IngestText ingests one markdown document and returns the number of
// chunks written. Documents that normalize to nothing write zero chunks
// without error.
func (ix *Indexer) IngestText(ctx context.Context, bookID, sourcePath, content string) (int, error) {
	meta, body := markdown.ParseFrontmatter(content)
	normalized := markdown.Normalize(body)
	if normalized == "" {
		return 0, nil
	}

	title := markdown.ExtractTitle(meta, body, defaultTitle(sourcePath))
	chapterID := chapterFromMeta(meta)

	pieces := markdown.Chunk(normalized, markdown.ChunkOptions{
		ChunkSize:    ix.config.ChunkSize,
		Overlap:      ix.config.ChunkOverlap,
		MinChunkSize: ix.config.MinChunkSize,
	})
	if len(pieces) == 0 {
		return 0, nil
	}

	embeddings, err := ix.embedAll(ctx, pieces)
	if err != nil {
		return 0, err
	}

	chunks := make([]*store.Chunk, 0, len(pieces))
	for i, text := range pieces {
		chunks = append(chunks, &store.Chunk{
			ID:         chunkID(bookID, sourcePath, i),
			BookID:     bookID,
			ChapterID:  chapterID,
			Title:      title,
			SourcePath: sourcePath,
			Index:      i,
			Text:       text,
			Embedding:  embeddings[i],
		})
	}

	written, err := ix.store.Upsert(ctx, ix.config.Collection, chunks)
	if err != nil {
		return written, apierrors.ErrVectorStore.WithMessagef("failed to upsert %s", sourcePath).WithCause(err)
	}
	return written, nil
}

// embedAll embeds texts in batches of EmbedBatchSize.
func (ix *Indexer) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	batchSize := ix.config.EmbedBatchSize
	if batchSize <= 0 {
		batchSize = len(texts)
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := ix.embedProvider.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, apierrors.ErrProvider.WithMessage("failed to embed chunks").WithCause(err)
		}
		embeddings = append(embeddings, batch...)
	}
	return embeddings, nil
}

// chunkID derives a stable identifier so re-ingesting a source
// overwrites its previous points instead of duplicating them.
func chunkID(bookID, sourcePath string, index int) string {
	return textutil.HashString(fmt.Sprintf("%s|%s|%d", bookID, sourcePath, index))
}

// listMarkdownFiles returns all *.md files under dir, sorted.
func listMarkdownFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// defaultTitle derives a readable title from the file stem, so
// "moby-dick-ch1.md" falls back to "Moby Dick Ch1".
func defaultTitle(sourcePath string) string {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	words := strings.Fields(strings.ReplaceAll(stem, "-", " "))
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// chapterFromMeta pulls a chapter identifier out of frontmatter when one
// is present.
func chapterFromMeta(meta map[string]any) string {
	for _, key := range []string{"chapter", "chapter_id"} {
		if v, ok := meta[key]; ok {
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}
