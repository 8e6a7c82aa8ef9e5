package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
	"github.com/browerscan/pocketbase.cn/internal/logger"
)

// Crawl bounds for CollectAll.
const (
	CrawlPageSize = 200
	CrawlMaxPages = 200
)

// CollectAll pages through a list endpoint from offset 0 and returns every
// row. It stops when the backend reports no more rows, a page is empty, or
// CrawlMaxPages pages were read. On a failed page the rows collected so far
// are returned together with the error.
func CollectAll[T any](ctx context.Context, fetcher driven.PageFetcher[T], endpoint string) ([]T, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, domain.ErrInvalidEndpoint
	}

	logger.Section("Collect")
	logger.Debug("Endpoint: %s", endpoint)

	var out []T
	offset := 0
	for page := 0; page < CrawlMaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		q := u.Query()
		q.Set(domain.ParamLimit, strconv.Itoa(CrawlPageSize))
		q.Set(domain.ParamOffset, strconv.Itoa(offset))
		u.RawQuery = q.Encode()

		outcome := fetcher.FetchPage(ctx, u.String())
		if !outcome.OK() {
			logger.Warn("Collect stopped at offset %d: %s", offset, outcome.ErrorMessage())
			return out, fmt.Errorf("collect page at offset %d: %w", offset, outcome.Err)
		}

		rows := outcome.Data.Data
		out = append(out, rows...)
		cursor := outcome.Data.Meta.Advance(offset, len(rows))
		logger.Debug("Page %d: %d rows, hasMore=%t", page+1, len(rows), cursor.HasMore)

		if !cursor.HasMore || len(rows) == 0 {
			break
		}
		if cursor.Offset <= offset {
			cursor.Offset = offset + len(rows)
		}
		offset = cursor.Offset
	}

	logger.Info("Collected %d rows", len(out))
	return out, nil
}
