package retriever

import "github.com/jlacunza/udcito/internal/vectorstore"

// Dedupe removes documents with exactly duplicated content, keeping the
// first-encountered instance and its metadata. Output preserves the order
// of first occurrence; it is idempotent.
func Dedupe(docs []vectorstore.Document) []vectorstore.Document {
	seen := make(map[string]struct{}, len(docs))
	unique := make([]vectorstore.Document, 0, len(docs))
	for _, doc := range docs {
		if _, ok := seen[doc.Content]; ok {
			continue
		}
		seen[doc.Content] = struct{}{}
		unique = append(unique, doc)
	}
	return unique
}
