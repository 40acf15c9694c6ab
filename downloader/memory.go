package downloader

import (
	"context"
	"time"

	"github.com/bluele/gcache"
)

const DefaultMemoryCacheSize = 1000

// Caches downloaded files in memory. Least recently used entries are
// evicted once the cache is full.
type MemoryDownloader struct {
	cache gcache.Cache

	TimeNow func() time.Time
}

type nowFunc func() time.Time

func (f nowFunc) Now() time.Time { return f() }

func NewMemoryDownloader() *MemoryDownloader {
	d := &MemoryDownloader{
		TimeNow: time.Now,
	}
	d.cache = gcache.New(DefaultMemoryCacheSize).
		LRU().
		Clock(nowFunc(func() time.Time { return d.TimeNow() })).
		Build()
	return d
}

func (d *MemoryDownloader) Get(
	ctx context.Context,
	url string,
	headers map[string]string,
	options GetOptions,
) ([]byte, error) {
	if options.Cache {
		if value, err := d.cache.Get(url); err == nil {
			return value.([]byte), nil
		}
	}

	body, err := HTTPGet(ctx, url, headers, options)
	if err != nil {
		return nil, err
	}

	if options.Cache {
		err = d.cache.SetWithExpire(url, body, options.CacheTTL)
		if err != nil {
			return nil, err
		}
	}

	return body, nil
}

func (d *MemoryDownloader) Post(
	ctx context.Context,
	url string,
	headers map[string]string,
	contentType string,
	body []byte,
	options GetOptions,
) ([]byte, error) {
	return HTTPPost(ctx, url, headers, contentType, body, options)
}
