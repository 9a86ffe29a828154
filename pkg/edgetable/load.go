package edgetable

import (
	"context"
	"errors"

	"github.com/dd0wney/cluso-tcd/pkg/logging"
)

// Load opens and reads the table described by cfg.
//
// A source that is missing, empty, or corrupt yields an empty table whose
// Unreadable field carries the cause; the error is logged, not returned.
// A missing named column is returned as a *SchemaError. Context
// cancellation is returned as is.
func Load(ctx context.Context, cfg SourceConfig, cols Columns, logger logging.Logger) (*Table, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.Component("edgetable"))

	src, err := Open(ctx, cfg)
	if err != nil {
		return degrade(ctx, cols, err, logger)
	}
	defer src.Close()

	table, err := src.Read(ctx, cols)
	if err != nil {
		if errors.Is(err, ErrSchemaMismatch) {
			logger.Error("edge table schema mismatch", logging.Error(err))
			return nil, err
		}
		return degrade(ctx, cols, err, logger)
	}

	logger.Info("edge table loaded",
		logging.String("format", string(formatOf(cfg))),
		logging.Int("rows", table.Len()),
	)
	return table, nil
}

func degrade(ctx context.Context, cols Columns, err error, logger logging.Logger) (*Table, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if !errors.Is(err, ErrInputUnreadable) {
		err = errors.Join(ErrInputUnreadable, err)
	}
	logger.Warn("edge table unreadable, continuing with empty table", logging.Error(err))
	return emptyTable(cols, err), nil
}

func formatOf(cfg SourceConfig) Format {
	if cfg.Format != "" {
		return cfg.Format
	}
	return DetectFormat(cfg.Location)
}
