package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendAttempt(ctx context.Context, data AttemptEventData) error {
	err := r.insert(ctx, attemptTableName,
		[]string{"quiz_id", "topic", "score", "total", "percentage", "band", "retake"},
		data.QuizID,
		data.Topic,
		data.Score,
		data.Total,
		data.Percentage,
		data.Band,
		data.Retake,
	)
	if err != nil {
		return fmt.Errorf("save attempt event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryAttempts(ctx context.Context, opts QueryOpts) ([]AttemptRecord, error) {
	sel := sqlite().Select(
		"id", "sequence", "timestamp", "quiz_id", "topic",
		"score", "total", "percentage", "band", "retake",
	).From(entsql.Table(attemptTableName))

	var records []AttemptRecord
	err := r.query(ctx, opts.apply(sel), func(rows *entsql.Rows) error {
		var rec AttemptRecord
		var ts int64
		if err := rows.Scan(&rec.ID, &rec.Sequence, &ts, &rec.QuizID, &rec.Topic,
			&rec.Score, &rec.Total, &rec.Percentage, &rec.Band, &rec.Retake); err != nil {
			return err
		}
		rec.Timestamp = time.UnixMilli(ts).UTC()
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	return records, nil
}

func (r *eventRepo) AttemptStats(ctx context.Context) (AttemptStats, error) {
	stats := AttemptStats{ByBand: make(map[string]int)}

	totals := sqlite().Select(
		entsql.Count("*"),
		"COUNT(DISTINCT quiz_id)",
		"COALESCE(AVG(percentage), 0)",
		"COALESCE(MAX(percentage), 0)",
	).From(entsql.Table(attemptTableName))
	err := r.query(ctx, totals, func(rows *entsql.Rows) error {
		return rows.Scan(&stats.Attempts, &stats.Quizzes, &stats.AvgPercentage, &stats.BestPercent)
	})
	if err != nil {
		return stats, fmt.Errorf("query attempt stats: %w", err)
	}

	bands := sqlite().Select("band", entsql.Count("*")).
		From(entsql.Table(attemptTableName)).
		GroupBy("band")
	err = r.query(ctx, bands, func(rows *entsql.Rows) error {
		var band string
		var n int
		if err := rows.Scan(&band, &n); err != nil {
			return err
		}
		stats.ByBand[band] = n
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("query attempt bands: %w", err)
	}
	return stats, nil
}
