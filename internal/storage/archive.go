package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	ReportPrefix      = "exports/analytics"
	reportContentType = "application/pdf"
	reportCache       = "private, max-age=0, no-store"
)

// Archive is what the export handler needs from the object store.
type Archive interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string, cacheControl string) (string, error)
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	PublicURL(key string) string
}

type ArchivedReport struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ReportKey builds exports/analytics/<yyyy-mm-dd>/<unix-millis>.pdf in UTC.
func ReportKey(at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("%s/%s/%d.pdf", ReportPrefix, at.Format("2006-01-02"), at.UnixMilli())
}

// ReportDayPrefix is the listing prefix for one UTC day.
func ReportDayPrefix(day time.Time) string {
	return ReportPrefix + "/" + day.UTC().Format("2006-01-02") + "/"
}

func ArchiveReport(ctx context.Context, a Archive, pdf []byte, at time.Time) (ArchivedReport, error) {
	key := ReportKey(at)
	url, err := a.PutObject(ctx, key, pdf, reportContentType, reportCache)
	if err != nil {
		return ArchivedReport{}, fmt.Errorf("archive report %s: %w", key, err)
	}
	return ArchivedReport{Key: key, URL: url}, nil
}

// ListReports returns the archived reports of one day, newest first.
func ListReports(ctx context.Context, a Archive, day time.Time) ([]ArchivedReport, error) {
	keys, err := a.ListKeys(ctx, ReportDayPrefix(day))
	if err != nil {
		return nil, err
	}
	out := make([]ArchivedReport, 0, len(keys))
	for _, key := range keys {
		if !strings.HasSuffix(key, ".pdf") {
			continue
		}
		out = append(out, ArchivedReport{Key: key, URL: a.PublicURL(key)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	return out, nil
}
