package vectorstore

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
)

const (
	contentField = "content"
	sourceField  = "source"
)

// QdrantStore implements VectorStore using a single Qdrant collection
type QdrantStore struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantStore creates a new Qdrant vector store client
// url should be in format "host:port" (e.g., "localhost:6334")
func NewQdrantStore(ctx context.Context, url, collection string) (*QdrantStore, error) {
	host, portStr, err := net.SplitHostPort(url)
	if err != nil {
		// If no port specified, assume default
		host = url
		portStr = "6334"
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port in qdrant url: %w", err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &QdrantStore{client: client, collection: collection}, nil
}

// Close closes the Qdrant client connection
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// CreateCollection creates the backing collection and a full-text index
// on the content payload, which TextSearch relies on
func (s *QdrantStore) CreateCollection(ctx context.Context, dimension int) error {
	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collection,
		FieldName:      contentField,
		FieldType:      qdrant.FieldType_FieldTypeText.Enum(),
	})
	if err != nil {
		return fmt.Errorf("failed to create text index: %w", err)
	}

	return nil
}

// CollectionExists checks if the backing collection exists
func (s *QdrantStore) CollectionExists(ctx context.Context) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}

	return exists, nil
}

// Upsert inserts or updates chunks in the vector store
func (s *QdrantStore) Upsert(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		payload := map[string]*qdrant.Value{
			contentField: qdrant.NewValueString(chunk.Content),
		}
		for k, v := range chunk.Metadata {
			payload[k] = qdrant.NewValueString(v)
		}

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(chunk.ID),
			Payload: payload,
			Vectors: qdrant.NewVectors(chunk.Vector...),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

// Search performs similarity search ordered by descending similarity
func (s *QdrantStore) Search(ctx context.Context, vector []float32, k int) ([]Document, error) {
	response, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	documents := make([]Document, 0, len(response))
	for _, point := range response {
		documents = append(documents, documentFromPayload(point.Payload))
	}

	return documents, nil
}

// TextSearch performs a lexical full-text match over document content
func (s *QdrantStore) TextSearch(ctx context.Context, query string, k int) ([]Document, error) {
	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatchText(contentField, query),
			},
		},
		Limit:       qdrant.PtrOf(uint32(k)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to text search: %w", err)
	}

	documents := make([]Document, 0, len(points))
	for _, point := range points {
		documents = append(documents, documentFromPayload(point.Payload))
	}

	return documents, nil
}

// DeleteBySource removes all chunks whose source metadata matches
func (s *QdrantStore) DeleteBySource(ctx context.Context, source string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch(sourceField, source),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete by source: %w", err)
	}

	return nil
}

func documentFromPayload(payload map[string]*qdrant.Value) Document {
	doc := Document{
		Metadata: make(map[string]string),
	}
	for k, v := range payload {
		if k == contentField {
			doc.Content = v.GetStringValue()
			continue
		}
		doc.Metadata[k] = v.GetStringValue()
	}
	return doc
}

// Ensure QdrantStore implements VectorStore
var _ VectorStore = (*QdrantStore)(nil)
