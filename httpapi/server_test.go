package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docit/core"
	"github.com/poiesic/docit/ingest"
)

type fakeIngester struct {
	stats *core.IngestStats
	err   error
}

func (f *fakeIngester) Run(ctx context.Context) (*core.IngestStats, error) {
	return f.stats, f.err
}

type fakeAsker struct {
	answer *core.Answer
	err    error
	asked  string
	topK   int
}

func (f *fakeAsker) Ask(ctx context.Context, question string, topK int) (*core.Answer, error) {
	f.asked = question
	f.topK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

type fakeLister struct {
	docs  []*core.Document
	limit int
}

func (f *fakeLister) ListDocuments(ctx context.Context, limit int) ([]*core.Document, error) {
	f.limit = limit
	return f.docs, nil
}

func newTestServer(ingester Ingester, asker Asker, lister DocumentLister, uploads UploadDirs) *httptest.Server {
	return httptest.NewServer(NewServer(ingester, asker, lister, uploads).Router())
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeIngester{}, &fakeAsker{}, &fakeLister{}, UploadDirs{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestIngest(t *testing.T) {
	t.Run("returns stats", func(t *testing.T) {
		srv := newTestServer(&fakeIngester{stats: &core.IngestStats{PDF: 2, Chunks: 10}},
			&fakeAsker{}, &fakeLister{}, UploadDirs{})
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/ingest", "application/json", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var stats core.IngestStats
		decodeBody(t, resp, &stats)
		assert.Equal(t, 2, stats.PDF)
		assert.Equal(t, 10, stats.Chunks)
	})

	t.Run("busy returns conflict", func(t *testing.T) {
		srv := newTestServer(&fakeIngester{err: ingest.ErrIngestionInProgress},
			&fakeAsker{}, &fakeLister{}, UploadDirs{})
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/ingest", "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestQuery(t *testing.T) {
	t.Run("answer with sources", func(t *testing.T) {
		asker := &fakeAsker{answer: &core.Answer{
			Text: "on the first",
			Sources: []core.SourceRef{
				{Name: "lease.pdf", Type: core.DocumentTypePDF, Page: 1, Source: "/data/pdf/lease.pdf"},
			},
		}}
		srv := newTestServer(&fakeIngester{}, asker, &fakeLister{}, UploadDirs{})
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/query", "application/json",
			strings.NewReader(`{"question":"when is rent due?"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var answer core.Answer
		decodeBody(t, resp, &answer)
		assert.Equal(t, "when is rent due?", asker.asked)
		assert.Equal(t, 0, asker.topK)
		assert.Equal(t, "on the first", answer.Text)
		require.Len(t, answer.Sources, 1)
		assert.Equal(t, "lease.pdf", answer.Sources[0].Name)
	})

	t.Run("per-call top_k forwarded", func(t *testing.T) {
		asker := &fakeAsker{answer: &core.Answer{Text: "ok"}}
		srv := newTestServer(&fakeIngester{}, asker, &fakeLister{}, UploadDirs{})
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/query", "application/json",
			strings.NewReader(`{"question":"when is rent due?","top_k":3}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 3, asker.topK)
	})

	t.Run("negative top_k rejected", func(t *testing.T) {
		srv := newTestServer(&fakeIngester{}, &fakeAsker{}, &fakeLister{}, UploadDirs{})
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/query", "application/json",
			strings.NewReader(`{"question":"x","top_k":-1}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("error mapping", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			code int
		}{
			{"empty question", core.ErrEmptyQuestion, http.StatusBadRequest},
			{"no index", core.ErrIndexNotFound, http.StatusNotFound},
			{"model mismatch", core.ErrConfigMismatch, http.StatusConflict},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				srv := newTestServer(&fakeIngester{}, &fakeAsker{err: tt.err}, &fakeLister{}, UploadDirs{})
				defer srv.Close()

				resp, err := http.Post(srv.URL+"/api/query", "application/json",
					strings.NewReader(`{"question":"x"}`))
				require.NoError(t, err)
				resp.Body.Close()
				assert.Equal(t, tt.code, resp.StatusCode)
			})
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newTestServer(&fakeIngester{}, &fakeAsker{}, &fakeLister{}, UploadDirs{})
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/api/query", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDocuments(t *testing.T) {
	lister := &fakeLister{docs: []*core.Document{
		{Name: "lease.pdf", Type: core.DocumentTypePDF, Pages: 4, AddedAt: time.Now()},
		{Name: "memo.wav", Type: core.DocumentTypeAudio, AddedAt: time.Now()},
	}}
	srv := newTestServer(&fakeIngester{}, &fakeAsker{}, lister, UploadDirs{})
	defer srv.Close()

	t.Run("default limit", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/documents")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Documents []map[string]any `json:"documents"`
		}
		decodeBody(t, resp, &body)
		assert.Len(t, body.Documents, 2)
		assert.Equal(t, 20, lister.limit)
	})

	t.Run("explicit limit", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/documents?limit=5")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 5, lister.limit)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/documents?limit=nope")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func uploadRequest(t *testing.T, url, filename string, content []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url+"/api/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func TestUpload(t *testing.T) {
	root := t.TempDir()
	uploads := UploadDirs{
		PDF:   filepath.Join(root, "pdf"),
		Image: filepath.Join(root, "image"),
		Audio: filepath.Join(root, "audio"),
	}
	srv := newTestServer(&fakeIngester{}, &fakeAsker{}, &fakeLister{}, uploads)
	defer srv.Close()

	t.Run("routes by extension", func(t *testing.T) {
		tests := []struct {
			filename string
			dir      string
		}{
			{"report.pdf", uploads.PDF},
			{"scan.PNG", uploads.Image},
			{"memo.mp3", uploads.Audio},
		}

		for _, tt := range tests {
			resp := uploadRequest(t, srv.URL, tt.filename, []byte("payload"))
			assert.Equal(t, http.StatusCreated, resp.StatusCode)
			resp.Body.Close()

			data, err := os.ReadFile(filepath.Join(tt.dir, tt.filename))
			require.NoError(t, err)
			assert.Equal(t, []byte("payload"), data)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		resp := uploadRequest(t, srv.URL, "notes.txt", []byte("x"))
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing file field", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/upload", "application/json", strings.NewReader("{}"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
