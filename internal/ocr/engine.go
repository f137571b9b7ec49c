package ocr

import "context"

type Engine interface {
	Name() string
	GetModel() string
	Process(ctx context.Context, src Source) (Result, error)
}
