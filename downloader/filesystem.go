package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// Caches GET responses in a JSON file, so that they survive between
// runs of the CLI.
type Filesystem struct {
	Path    string
	Records map[string]fsRecord

	TimeNow func() time.Time

	mutex sync.Mutex
}

type fsRecord struct {
	Body        []byte    `json:"body"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

func NewFilesystem(path string) (*Filesystem, error) {
	fs := &Filesystem{
		Path:    path,
		Records: map[string]fsRecord{},
		TimeNow: time.Now,
	}

	err := fs.load()
	if err != nil {
		return nil, err
	}

	return fs, nil
}

func (f *Filesystem) Get(
	ctx context.Context,
	url string,
	headers map[string]string,
	options GetOptions,
) ([]byte, error) {

	f.mutex.Lock()
	defer f.mutex.Unlock()

	if options.Cache {
		if record, found := f.Records[url]; found {
			if record.RetrievedAt.Add(options.CacheTTL).After(f.TimeNow()) {
				log.Printf("cache hit: %s", url)
				return record.Body, nil
			}
			log.Printf("cache expired: %s", url)
		}
	}

	body, err := HTTPGet(ctx, url, headers, options)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}

	if options.Cache {
		f.Records[url] = fsRecord{
			Body:        body,
			RetrievedAt: f.TimeNow().UTC(),
		}
		err = f.save()
		if err != nil {
			return nil, fmt.Errorf("saving: %w", err)
		}
	}

	return body, nil
}

func (f *Filesystem) Post(
	ctx context.Context,
	url string,
	headers map[string]string,
	contentType string,
	body []byte,
	options GetOptions,
) ([]byte, error) {
	return HTTPPost(ctx, url, headers, contentType, body, options)
}

func (f *Filesystem) load() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	buf, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading: %w", err)
	}

	err = json.Unmarshal(buf, &f.Records)
	if err != nil {
		return fmt.Errorf("unmarshalling: %w", err)
	}

	return nil
}

func (f *Filesystem) save() error {
	buf, err := json.Marshal(f.Records)
	if err != nil {
		return fmt.Errorf("marshalling: %w", err)
	}

	err = os.WriteFile(f.Path, buf, 0644)
	if err != nil {
		return fmt.Errorf("writing: %w", err)
	}

	return nil
}
