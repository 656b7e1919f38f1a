package api

import (
	"context"
	"regexp"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/casetrace/evidence-analyzer/internal/storage"
)

const (
	minChunkLength = 20
	maxChunkLength = 2000
)

// speakerPrefix matches transcript-style attribution lines such as
// "DET. RIVERA:" or "Witness Sarah Chen:".
var speakerPrefix = regexp.MustCompile(`^([A-Za-z][A-Za-z.\- ]{1,60}):\s+`)

// extractChunks segments plain-text evidence into chunks. Paragraphs are
// separated by blank lines, form feeds advance the page counter, and a
// leading "Name:" attribution becomes the chunk speaker.
func extractChunks(content string, doc *storage.Document, caseNumber string) []*storage.Chunk {
	var chunks []*storage.Chunk

	content = strings.ReplaceAll(content, "\r\n", "\n")

	page := 1
	for _, para := range strings.Split(content, "\n\n") {
		pageStart := page
		page += strings.Count(para, "\f")

		para = strings.ReplaceAll(para, "\f", " ")
		para = cleanText(para)
		if len(para) < minChunkLength {
			continue
		}
		if len(para) > maxChunkLength {
			para = para[:maxChunkLength]
		}

		speaker := ""
		if m := speakerPrefix.FindStringSubmatch(para); m != nil {
			speaker = strings.TrimSpace(m[1])
			para = strings.TrimSpace(para[len(m[0]):])
			if len(para) < minChunkLength {
				continue
			}
		}

		chunks = append(chunks, &storage.Chunk{
			DocumentID: doc.ID,
			CaseID:     doc.CaseID,
			CaseNumber: caseNumber,
			PageStart:  pageStart,
			PageEnd:    page,
			Speaker:    speaker,
			Text:       para,
			Confidence: extractionConfidence(para, speaker),
			Embedding:  pgvector.NewVector(nil),
		})
	}

	return chunks
}

// extractionConfidence scores how cleanly a chunk was segmented. Plain
// text carries no OCR signal, so the score reflects structural cues only
// and is a pure function of the inputs.
func extractionConfidence(text, speaker string) float64 {
	conf := 0.85
	if speaker != "" {
		conf += 0.1
	}
	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, "\"") {
		conf += 0.05
	}
	if len(text) < 60 {
		conf -= 0.1
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

// cleanText collapses whitespace inside a paragraph.
func cleanText(text string) string {
	spaceRegex := regexp.MustCompile(`\s+`)
	return strings.TrimSpace(spaceRegex.ReplaceAllString(text, " "))
}

// fillEmbeddings populates embedding vectors for the given chunks. When
// no embedding client is configured the chunks are stored without
// embeddings and similarity search is unavailable for them.
func (s *Server) fillEmbeddings(ctx context.Context, chunks []*storage.Chunk) error {
	if s.embedder == nil || len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return err
	}

	for i, v := range vectors {
		chunks[i].Embedding = pgvector.NewVector(v)
	}

	return nil
}
