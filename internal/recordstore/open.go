package recordstore

import (
	"context"
	"errors"
	"fmt"
)

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

var ErrUnknownDriver = errors.New("unknown store driver")

type Options struct {
	Driver        string
	DataDir       string
	PostgresDSN   string
	MongoURI      string
	MongoDatabase string
}

func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case DriverFile, "":
		return NewFileBackend(opts.DataDir)
	case DriverMemory:
		return NewMemBackend(), nil
	case DriverPostgres:
		return OpenPostgres(ctx, opts.PostgresDSN)
	case DriverMongo:
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
