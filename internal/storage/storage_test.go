package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArchive struct {
	puts   map[string][]byte
	keys   []string
	putErr error
}

func (f *fakeArchive) PutObject(_ context.Context, key string, body []byte, contentType string, _ string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	if contentType != reportContentType {
		return "", errors.New("unexpected content type " + contentType)
	}
	if f.puts == nil {
		f.puts = make(map[string][]byte)
	}
	f.puts[key] = body
	return f.PublicURL(key), nil
}

func (f *fakeArchive) ListKeys(_ context.Context, prefix string) ([]string, error) {
	out := make([]string, 0)
	for _, k := range f.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeArchive) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func TestConfigNormalize(t *testing.T) {
	cfg, err := Config{
		Endpoint:      " acct.r2.cloudflarestorage.com ",
		Bucket:        "reports",
		PublicBaseURL: "https://cdn.example.com/",
	}.normalize()
	require.NoError(t, err)
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com", cfg.Endpoint)
	assert.Equal(t, "auto", cfg.Region)
	assert.Equal(t, "https://cdn.example.com", cfg.PublicBaseURL)

	_, err = Config{Bucket: "reports", PublicBaseURL: "https://cdn"}.normalize()
	assert.EqualError(t, err, "object store endpoint is required")
	_, err = Config{Endpoint: "https://r2", PublicBaseURL: "https://cdn"}.normalize()
	assert.EqualError(t, err, "object store bucket is required")
	_, err = Config{Endpoint: "https://r2", Bucket: "reports"}.normalize()
	assert.EqualError(t, err, "object store public base url is required")
}

func TestReportKeyUsesUTC(t *testing.T) {
	at := time.Date(2026, 3, 19, 1, 0, 0, 0, time.FixedZone("UTC+7", 7*3600))
	assert.Equal(t, "exports/analytics/2026-03-18/1773856800000.pdf", ReportKey(at))
	assert.Equal(t, "exports/analytics/2026-03-18/", ReportDayPrefix(at))
}

func TestArchiveReport(t *testing.T) {
	at := time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC)
	a := &fakeArchive{}

	got, err := ArchiveReport(context.Background(), a, []byte("%PDF"), at)
	require.NoError(t, err)
	assert.Equal(t, ReportKey(at), got.Key)
	assert.Equal(t, "https://cdn.example.com/"+got.Key, got.URL)
	assert.Equal(t, []byte("%PDF"), a.puts[got.Key])

	a.putErr = errors.New("bucket offline")
	_, err = ArchiveReport(context.Background(), a, []byte("%PDF"), at)
	assert.ErrorContains(t, err, "bucket offline")
}

func TestListReportsNewestFirst(t *testing.T) {
	a := &fakeArchive{keys: []string{
		"exports/analytics/2026-03-18/100.pdf",
		"exports/analytics/2026-03-18/300.pdf",
		"exports/analytics/2026-03-18/notes.txt",
		"exports/analytics/2026-03-17/200.pdf",
	}}

	got, err := ListReports(context.Background(), a, time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "exports/analytics/2026-03-18/300.pdf", got[0].Key)
	assert.Equal(t, "https://cdn.example.com/exports/analytics/2026-03-18/300.pdf", got[0].URL)
	assert.Equal(t, "exports/analytics/2026-03-18/100.pdf", got[1].Key)

	empty, err := ListReports(context.Background(), a, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestParseStorageClass(t *testing.T) {
	assert.Nil(t, parseStorageClass("  "))
	sc := parseStorageClass(" standard ")
	require.NotNil(t, sc)
	assert.Equal(t, "STANDARD", string(*sc))
}
