package ingestion

import (
	"strings"
	"testing"
)

func TestNewChunker_Defaults(t *testing.T) {
	chunker := NewChunker(ChunkerConfig{})

	// Should apply defaults
	if chunker.config.TargetSize != 512 {
		t.Errorf("expected default TargetSize 512, got %d", chunker.config.TargetSize)
	}
	if chunker.config.MaxSize != 1024 {
		t.Errorf("expected default MaxSize 1024, got %d", chunker.config.MaxSize)
	}
	if chunker.config.Method != "sentence" {
		t.Errorf("expected default Method 'sentence', got %s", chunker.config.Method)
	}
}

func TestChunker_EmptyContent(t *testing.T) {
	chunker := NewChunker(ChunkerConfig{Method: "fixed"})

	chunks := chunker.Chunk("")
	if chunks != nil {
		t.Errorf("expected nil for empty content, got %v", chunks)
	}

	chunks = chunker.Chunk("   ")
	if chunks != nil {
		t.Errorf("expected nil for whitespace content, got %v", chunks)
	}
}

func TestChunker_FixedMethod(t *testing.T) {
	chunker := NewChunker(ChunkerConfig{
		Method:     "fixed",
		TargetSize: 10, // 10 words per chunk
		MaxSize:    20,
		Overlap:    2,
	})

	// Create content with 25 words
	words := make([]string, 25)
	for i := range words {
		words[i] = "word"
	}
	content := strings.Join(words, " ")

	chunks := chunker.Chunk(content)

	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}

	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d has wrong index %d", i, chunk.Index)
		}
		if chunk.Metadata["method"] != "fixed" {
			t.Errorf("chunk %d has wrong method %s", i, chunk.Metadata["method"])
		}
		if chunk.Content == "" {
			t.Errorf("chunk %d has empty content", i)
		}
	}
}

func TestChunker_SentenceMethod(t *testing.T) {
	chunker := NewChunker(ChunkerConfig{
		Method:     "sentence",
		TargetSize: 20,
		MaxSize:    50,
		Overlap:    5,
	})

	content := "This is the first sentence. This is the second sentence. This is the third sentence."

	chunks := chunker.Chunk(content)

	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}

	for _, chunk := range chunks {
		if chunk.Metadata["method"] != "sentence" {
			t.Errorf("expected method 'sentence', got %s", chunk.Metadata["method"])
		}
	}
}

func TestChunker_SentenceOverlap(t *testing.T) {
	chunker := NewChunker(ChunkerConfig{
		Method:     "sentence",
		TargetSize: 8,
		MaxSize:    12,
		Overlap:    4,
	})

	content := "One two three four five. Six seven eight nine ten. Eleven twelve thirteen fourteen fifteen."

	chunks := chunker.Chunk(content)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// With overlap, the second chunk should repeat the end of the first.
	first := chunks[0].Content
	second := chunks[1].Content
	lastSentence := "Six seven eight nine ten."
	if !strings.Contains(first, lastSentence) || !strings.Contains(second, lastSentence) {
		t.Errorf("expected overlapping sentence in both chunks:\nfirst: %q\nsecond: %q", first, second)
	}
}

func TestChunker_LongSentenceSplit(t *testing.T) {
	chunker := NewChunker(ChunkerConfig{
		Method:     "sentence",
		TargetSize: 5,
		MaxSize:    8,
		Overlap:    0,
	})

	// One sentence with 20 words and no terminator until the end.
	words := make([]string, 20)
	for i := range words {
		words[i] = "word"
	}
	content := strings.Join(words, " ") + "."

	chunks := chunker.Chunk(content)

	if len(chunks) < 2 {
		t.Fatalf("expected long sentence to split, got %d chunks", len(chunks))
	}
	for _, chunk := range chunks {
		if chunk.Metadata["split"] != "true" {
			t.Errorf("expected split metadata on chunk %d", chunk.Index)
		}
	}
}

func TestSplitSentences_Abbreviations(t *testing.T) {
	sentences := splitSentences("El Dr. Gómez dicta la materia. La cursada es anual.")

	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(sentences), sentences)
	}
	if !strings.HasPrefix(sentences[0], "El Dr. Gómez") {
		t.Errorf("abbreviation should not end the sentence: %q", sentences[0])
	}
}

func TestSplitSentences_QuestionAndExclamation(t *testing.T) {
	sentences := splitSentences("Is it open? Yes! Come in.")

	if len(sentences) != 3 {
		t.Errorf("expected 3 sentences, got %d: %v", len(sentences), sentences)
	}
}
