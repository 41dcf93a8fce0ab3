package storage

import (
	"context"
	"io"
)

// Storage - хранилище shared documents заявок
type Storage interface {
	// Save сохраняет файл и возвращает публичный URL
	Save(ctx context.Context, key string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

type Config struct {
	BasePath string
	BaseURL  string
}

func NewStorage(cfg Config) (Storage, error) {
	return NewLocalStorage(cfg.BasePath, cfg.BaseURL)
}
