package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/01moynul/tenantdesk-golang/internal/logger"
	"github.com/01moynul/tenantdesk-golang/internal/metrics"
	"github.com/01moynul/tenantdesk-golang/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Entity names, matching the table names.
const (
	EntityProduct  = "product"
	EntityVariant  = "variant"
	EntityOrder    = "order"
	EntityLineItem = "line_item"
)

// Default batch sizes per entity.
var defaultBatchSize = map[string]int{
	EntityProduct:  30,
	EntityVariant:  50,
	EntityOrder:    500,
	EntityLineItem: 1000,
}

var ErrUnknownEntity = errors.New("unknown entity")

// maxBindVars is the lowest bind-parameter limit of the supported drivers (SQLite). A batch
// wider than that is written as several INSERT statements inside the same transaction.
const maxBindVars = 32766

// Mode selects how batches relate to transactions.
type Mode int

const (
	// ModeBatched commits every batch on its own. A failure stops the run and leaves the
	// earlier batches in place.
	ModeBatched Mode = iota
	// ModeAtomic writes every batch inside one transaction. A failure leaves nothing behind.
	ModeAtomic
)

// ParseMode accepts "batched" and "atomic"; empty means batched.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "batched":
		return ModeBatched, nil
	case "atomic":
		return ModeAtomic, nil
	}
	return ModeBatched, fmt.Errorf("unknown ingest mode %q", s)
}

func (m Mode) String() string {
	if m == ModeAtomic {
		return "atomic"
	}
	return "batched"
}

type Options struct {
	BatchSize int // <= 0 uses the entity default
	Mode      Mode

	// DeriveSlugs fills a missing product slug from its title.
	DeriveSlugs bool

	// ShopID, when set, is written into records that lack shop_id; records naming another
	// shop are rejected with ErrShopMismatch.
	ShopID int64

	// OnProgress is called after each batch is written. In ModeAtomic the rows are not
	// committed until the run returns.
	OnProgress func(Progress)
}

func (o Options) batchSize(entity string) int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return defaultBatchSize[entity]
}

type Progress struct {
	Entity string
	Batch  int
	Done   int
	Total  int
}

// Summary reports what a run left in the database.
type Summary struct {
	Entity    string `json:"entity"`
	Total     int    `json:"total"`
	Committed int    `json:"committed"`
	Batches   int    `json:"batches"`
}

// BatchError identifies the batch that stopped a run. Index is the position of the offending
// record in the input, or -1 when the batch as a whole was rejected.
type BatchError struct {
	Entity string
	Batch  int
	Index  int
	Err    error
}

func (e *BatchError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s batch %d, record %d: %v", e.Entity, e.Batch, e.Index, e.Err)
	}
	return fmt.Sprintf("%s batch %d: %v", e.Entity, e.Batch, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// Pipeline writes record sets in fixed-size batches.
type Pipeline struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *Pipeline {
	return &Pipeline{db: db, log: logger.OrNop(log)}
}

func (p *Pipeline) Products(ctx context.Context, records []Record, opts Options) (Summary, error) {
	return run(ctx, p, EntityProduct, records, opts, decodeProduct)
}

func (p *Pipeline) Variants(ctx context.Context, records []Record, opts Options) (Summary, error) {
	return run(ctx, p, EntityVariant, records, opts, decodeVariant)
}

func (p *Pipeline) Orders(ctx context.Context, records []Record, opts Options) (Summary, error) {
	return run(ctx, p, EntityOrder, records, opts, decodeOrder)
}

func (p *Pipeline) LineItems(ctx context.Context, records []Record, opts Options) (Summary, error) {
	return run(ctx, p, EntityLineItem, records, opts, decodeLineItem)
}

// Run dispatches on an entity name.
func (p *Pipeline) Run(ctx context.Context, entity string, records []Record, opts Options) (Summary, error) {
	switch entity {
	case EntityProduct:
		return p.Products(ctx, records, opts)
	case EntityVariant:
		return p.Variants(ctx, records, opts)
	case EntityOrder:
		return p.Orders(ctx, records, opts)
	case EntityLineItem:
		return p.LineItems(ctx, records, opts)
	}
	return Summary{Entity: entity, Total: len(records)}, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
}

type decodeFunc[T any] func(Record, Options) (*T, error)

func run[T any](ctx context.Context, p *Pipeline, entity string, records []Record, opts Options, decode decodeFunc[T]) (Summary, error) {
	size := opts.batchSize(entity)
	sum := Summary{Entity: entity, Total: len(records)}
	if len(records) == 0 {
		return sum, nil
	}
	p.log.Info("Starting bulk insert",
		zap.String("entity", entity),
		zap.Int("records", len(records)),
		zap.Int("batch_size", size),
		zap.Stringer("mode", opts.Mode),
	)

	if opts.Mode == ModeAtomic {
		written, batches := 0, 0
		err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for batch, start := 0, 0; start < len(records); batch, start = batch+1, start+size {
				end := min(start+size, len(records))
				if err := writeBatch(ctx, tx, entity, batch, start, records[start:end], opts, decode); err != nil {
					return err
				}
				written, batches = end, batch+1
				opts.progress(Progress{Entity: entity, Batch: batch, Done: written, Total: len(records)})
			}
			return nil
		})
		if err != nil {
			metrics.BatchRolledBack(entity)
			p.log.Error("Bulk insert rolled back", zap.String("entity", entity), zap.Error(err))
			return sum, err
		}
		sum.Committed, sum.Batches = written, batches
		metrics.BatchCommitted(entity, written)
		p.log.Info("Bulk insert committed", zap.String("entity", entity), zap.Int("rows", written))
		return sum, nil
	}

	for batch, start := 0, 0; start < len(records); batch, start = batch+1, start+size {
		end := min(start+size, len(records))
		err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return writeBatch(ctx, tx, entity, batch, start, records[start:end], opts, decode)
		})
		if err != nil {
			metrics.BatchRolledBack(entity)
			p.log.Error("Batch rolled back",
				zap.String("entity", entity),
				zap.Int("batch", batch),
				zap.Int("committed", sum.Committed),
				zap.Error(err),
			)
			return sum, err
		}
		sum.Committed, sum.Batches = end, batch+1
		metrics.BatchCommitted(entity, end-start)
		p.log.Info("Committed batch",
			zap.String("entity", entity),
			zap.Int("batch", batch),
			zap.Int("done", end),
			zap.Int("total", len(records)),
		)
		opts.progress(Progress{Entity: entity, Batch: batch, Done: end, Total: len(records)})
	}
	return sum, nil
}

// statementRows is how many rows of T one INSERT can carry without exceeding maxBindVars.
func statementRows[T any](tx *gorm.DB) (int, error) {
	stmt := &gorm.Statement{DB: tx}
	if err := stmt.Parse(new(T)); err != nil {
		return 0, err
	}
	return max(1, maxBindVars/max(1, len(stmt.Schema.DBNames))), nil
}

// writeBatch decodes every record of one batch and inserts them in as few statements as the
// driver allows. All statements share tx, so the batch still commits or fails as one.
func writeBatch[T any](ctx context.Context, tx *gorm.DB, entity string, batch, start int, chunk []Record, opts Options, decode decodeFunc[T]) error {
	if err := ctx.Err(); err != nil {
		return &BatchError{Entity: entity, Batch: batch, Index: -1, Err: err}
	}
	rows := make([]T, 0, len(chunk))
	for i, rec := range chunk {
		row, err := decode(rec, opts)
		if err != nil {
			return &BatchError{Entity: entity, Batch: batch, Index: start + i, Err: err}
		}
		rows = append(rows, *row)
	}
	perStatement, err := statementRows[T](tx)
	if err != nil {
		return &BatchError{Entity: entity, Batch: batch, Index: -1, Err: err}
	}
	if err := tx.CreateInBatches(&rows, perStatement).Error; err != nil {
		return &BatchError{Entity: entity, Batch: batch, Index: -1, Err: store.TranslateError(entity, err)}
	}
	return nil
}

func (o Options) progress(pr Progress) {
	if o.OnProgress != nil {
		o.OnProgress(pr)
	}
}
