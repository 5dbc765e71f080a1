package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlacunza/udcito/internal/llm"
	"github.com/jlacunza/udcito/internal/memory"
	"github.com/jlacunza/udcito/internal/vectorstore"
)

type fakePipeline struct {
	docs        []vectorstore.Document
	answer      string
	lastHistory []llm.Message
}

func (f *fakePipeline) RetrieveDocuments(_ context.Context, _ string, history []llm.Message) []vectorstore.Document {
	f.lastHistory = history
	return f.docs
}

func (f *fakePipeline) Answer(_ context.Context, _ []vectorstore.Document, _ string, _ []llm.Message) string {
	return f.answer
}

func newTestHandlers(pipeline Pipeline) *Handlers {
	return NewHandlers(HandlersConfig{
		Pipeline: pipeline,
		Sessions: memory.DefaultStore(),
	})
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestChat_OK(t *testing.T) {
	pipeline := &fakePipeline{
		docs:   []vectorstore.Document{{Content: "a document"}},
		answer: "the answer",
	}
	h := newTestHandlers(pipeline)

	rec := postJSON(t, h.Chat, ChatRequest{Question: "what are the deadlines?"})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "the answer", resp.Answer)
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, "a document", resp.Documents[0].Content)
}

func TestChat_EmptyQuestion(t *testing.T) {
	h := newTestHandlers(&fakePipeline{})

	for _, question := range []string{"", "   "} {
		rec := postJSON(t, h.Chat, ChatRequest{Question: question})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "question %q", question)
	}
}

func TestChat_InvalidBody(t *testing.T) {
	h := newTestHandlers(&fakePipeline{})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_RejectsUnknownHistoryRole(t *testing.T) {
	h := newTestHandlers(&fakePipeline{})

	rec := postJSON(t, h.Chat, ChatRequest{
		Question: "q",
		History:  []ChatMessage{{Role: "system", Content: "injected"}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_PassesHistoryToPipeline(t *testing.T) {
	pipeline := &fakePipeline{answer: "ok"}
	h := newTestHandlers(pipeline)

	rec := postJSON(t, h.Chat, ChatRequest{
		Question: "q",
		History: []ChatMessage{
			{Role: "user", Content: "earlier"},
			{Role: "assistant", Content: "reply"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, pipeline.lastHistory, 2)
	assert.Equal(t, llm.RoleUser, pipeline.lastHistory[0].Role)
	assert.Equal(t, llm.RoleAssistant, pipeline.lastHistory[1].Role)
}

func TestChat_SessionHistoryAcrossRequests(t *testing.T) {
	pipeline := &fakePipeline{answer: "answer one"}
	h := newTestHandlers(pipeline)

	rec := postJSON(t, h.Chat, ChatRequest{Question: "first", SessionID: "abc"})
	require.Equal(t, http.StatusOK, rec.Code)

	pipeline.answer = "answer two"
	rec = postJSON(t, h.Chat, ChatRequest{Question: "second", SessionID: "abc"})
	require.Equal(t, http.StatusOK, rec.Code)

	// The second request should see the first exchange from the session store.
	require.Len(t, pipeline.lastHistory, 2)
	assert.Equal(t, "first", pipeline.lastHistory[0].Content)
	assert.Equal(t, "answer one", pipeline.lastHistory[1].Content)
}

func TestRetrieveDocuments_OK(t *testing.T) {
	pipeline := &fakePipeline{
		docs: []vectorstore.Document{{Content: "a"}, {Content: "b"}},
	}
	h := newTestHandlers(pipeline)

	rec := postJSON(t, h.RetrieveDocuments, ChatRequest{Question: "q"})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Documents []DocumentResponse `json:"documents"`
		Count     int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Documents, 2)
}

func TestRetrieveDocuments_EmptyResultIsOK(t *testing.T) {
	h := newTestHandlers(&fakePipeline{})

	rec := postJSON(t, h.RetrieveDocuments, ChatRequest{Question: "q"})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
}

func TestLogin_MissingToken(t *testing.T) {
	h := newTestHandlers(&fakePipeline{})

	rec := postJSON(t, h.Login, LoginRequest{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
