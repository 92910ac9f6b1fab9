package storage

import "github.com/baslie/yandex-reviews-to-md/models"

// DocumentWriter persists a rendered document at a resolved path.
type DocumentWriter interface {
	Write(path, doc string) error
}

// ReviewArchiver persists a fetched review batch to a durable backend.
type ReviewArchiver interface {
	Save(result *models.Result) error
	Close() error
}
