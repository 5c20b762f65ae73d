// Package content loads FAQ corpora from JSON documents on disk and can
// watch them for changes. The engine itself never touches the
// filesystem; this package is the bridge between CMS exports and engine
// construction.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/tutorbase/faqsearch/internal/debug"
	faqerrors "github.com/tutorbase/faqsearch/internal/errors"
	"github.com/tutorbase/faqsearch/internal/types"
)

// loadConcurrency bounds how many corpus files parse at once.
const loadConcurrency = 8

// Document is one corpus file: categories plus questions. A file may
// also be a bare JSON array of questions with no category block.
type Document struct {
	Categories []*types.Category `json:"categories"`
	Questions  []*types.Question `json:"questions"`
}

// LoadFile reads and decodes a single corpus file. Bare arrays of
// questions are accepted alongside the full document shape.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faqerrors.NewCorpusError("read", err).WithPath(path)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err == nil {
		return &doc, nil
	}

	var questions []*types.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, faqerrors.NewCorpusError("decode", err).WithPath(path)
	}
	return &Document{Questions: questions}, nil
}

// LoadGlob loads every file matching the doublestar pattern and merges
// the results. Files parse concurrently; merge order follows the sorted
// match order so repeated loads are deterministic.
func LoadGlob(ctx context.Context, pattern string) (*Document, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad corpus pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no corpus files match %q", pattern)
	}
	sort.Strings(matches)
	debug.LogIndex("loading %d corpus files for pattern %q\n", len(matches), pattern)

	docs := make([]*Document, len(matches))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, path := range matches {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := LoadFile(path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Merge(docs...), nil
}

// Merge combines documents, deduplicating questions and categories by
// ID. The first occurrence of an ID wins.
func Merge(docs ...*Document) *Document {
	merged := &Document{}
	seenQ := make(map[string]bool)
	seenC := make(map[string]bool)
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		for _, c := range doc.Categories {
			if c == nil || seenC[c.ID] {
				continue
			}
			seenC[c.ID] = true
			merged.Categories = append(merged.Categories, c)
		}
		for _, q := range doc.Questions {
			if q == nil || seenQ[q.ID] {
				continue
			}
			seenQ[q.ID] = true
			merged.Questions = append(merged.Questions, q)
		}
	}
	return merged
}

// Validate reports structural problems that would make a corpus
// unsearchable: blank IDs, blank question text, dangling category
// references. All problems are collected so a broken export surfaces
// everything in one pass.
func Validate(doc *Document) error {
	var problems []error
	known := make(map[string]bool, len(doc.Categories))
	for _, c := range doc.Categories {
		if c.ID == "" {
			problems = append(problems, faqerrors.NewCorpusError("validate",
				fmt.Errorf("category %q has no id", c.Name)))
			continue
		}
		known[c.ID] = true
	}
	for _, q := range doc.Questions {
		switch {
		case q.ID == "":
			problems = append(problems, faqerrors.NewCorpusError("validate",
				fmt.Errorf("question %q has no id", q.Question)))
		case q.Question == "":
			problems = append(problems, faqerrors.NewCorpusError("validate",
				fmt.Errorf("question has no text")).WithQuestion(q.ID))
		case q.Category != "" && len(known) > 0 && !known[q.Category]:
			problems = append(problems, faqerrors.NewCorpusError("validate",
				fmt.Errorf("unknown category %q", q.Category)).WithQuestion(q.ID))
		}
	}
	if multi := faqerrors.NewMultiError(problems); multi != nil {
		return multi
	}
	return nil
}
