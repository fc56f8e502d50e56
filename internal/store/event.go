package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out one monotonic sequence shared by every event
// table, so LLM calls and quiz attempts interleave in a single order even
// though each table has its own rowid.
//
// The mutex serializes within the process. The increment and the read run
// in one transaction that takes the write lock first.
type sequenceCounter struct {
	mu  sync.Mutex
	drv *entsql.Driver
}

// newSequenceCounter seeds the counter row if it is missing.
func newSequenceCounter(ctx context.Context, drv *entsql.Driver) (*sequenceCounter, error) {
	query, args := sqlite().Insert(sequenceTableName).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()
	if err := drv.Exec(ctx, query, args, nil); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequenceCounter{drv: drv}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (seq int64, err error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	tx, err := sc.drv.Tx(ctx)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	query, args := sqlite().Update(sequenceTableName).
		Add("next_val", 1).
		Where(entsql.EQ("id", 1)).
		Query()
	if err = tx.Exec(ctx, query, args, nil); err != nil {
		return 0, fmt.Errorf("bump sequence: %w", err)
	}

	query, args = sqlite().Select("next_val").
		From(entsql.Table(sequenceTableName)).
		Where(entsql.EQ("id", 1)).
		Query()
	var rows entsql.Rows
	if err = tx.Query(ctx, query, args, &rows); err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}
	var next int64
	if rows.Next() {
		err = rows.Scan(&next)
	} else {
		err = fmt.Errorf("sequence row missing")
	}
	rows.Close()
	if err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sequence: %w", err)
	}
	return next - 1, nil
}

// eventRepo implements EventRepo over ent's SQL builders and the global
// sequence counter.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func sqlite() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// insert appends one row to table, stamping it with the next sequence.
func (r *eventRepo) insert(ctx context.Context, table string, columns []string, values ...any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	query, args := sqlite().Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, columns...)...).
		Values(append([]any{seqNum, nowMillis()}, values...)...).
		Query()
	return r.drv.Exec(ctx, query, args, nil)
}

// query runs a built SELECT and hands each row to scan.
func (r *eventRepo) query(ctx context.Context, sel *entsql.Selector, scan func(*entsql.Rows) error) error {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(&rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// apply narrows sel by the filters of opts and orders it newest first.
func (o QueryOpts) apply(sel *entsql.Selector) *entsql.Selector {
	if o.After > 0 {
		sel.Where(entsql.GT("sequence", o.After))
	}
	if o.Before > 0 {
		sel.Where(entsql.LT("sequence", o.Before))
	}
	if !o.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", o.From.UnixMilli()))
	}
	if !o.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", o.To.UnixMilli()))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if o.Limit > 0 {
		sel.Limit(o.Limit)
	}
	return sel
}
