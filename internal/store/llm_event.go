package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var llmEventSelect = []string{
	"id", "sequence", "timestamp", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success", "error_message",
	"request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	err := r.insert(ctx, llmEventTableName,
		[]string{
			"provider", "model", "purpose",
			"input_tokens", "output_tokens", "latency_ms", "success", "error_message",
			"request_body", "response_body",
		},
		data.Provider,
		data.Model,
		data.Purpose,
		data.InputTokens,
		data.OutputTokens,
		data.LatencyMs,
		data.Success,
		data.ErrorMessage,
		data.RequestBody,
		data.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error) {
	sel := sqlite().Select(llmEventSelect...).From(entsql.Table(llmEventTableName))
	if opts.Purpose != "" {
		sel.Where(entsql.EQ("purpose", opts.Purpose))
	}

	var records []LLMEventRecord
	err := r.query(ctx, opts.apply(sel), func(rows *entsql.Rows) error {
		rec, err := scanLLMEvent(rows)
		if err != nil {
			return err
		}
		records = append(records, *rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return records, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error) {
	sel := sqlite().Select(llmEventSelect...).
		From(entsql.Table(llmEventTableName)).
		Where(entsql.EQ("id", id))

	var found *LLMEventRecord
	err := r.query(ctx, sel, func(rows *entsql.Rows) error {
		rec, err := scanLLMEvent(rows)
		found = rec
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	return found, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error) {
	sel := sqlite().Select(
		"purpose",
		entsql.Count("*"),
		"COALESCE(SUM(input_tokens), 0)",
		"COALESCE(SUM(output_tokens), 0)",
		"CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER)",
	).
		From(entsql.Table(llmEventTableName)).
		GroupBy("purpose").
		OrderBy("purpose")

	var stats []LLMUsageStats
	err := r.query(ctx, sel, func(rows *entsql.Rows) error {
		var st LLMUsageStats
		if err := rows.Scan(&st.Purpose, &st.Calls, &st.InputTokens, &st.OutputTokens, &st.AvgLatencyMs); err != nil {
			return err
		}
		stats = append(stats, st)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	return stats, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error) {
	sel := sqlite().Select(
		"model",
		entsql.Count("*"),
		"COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0)",
		"COALESCE(SUM(input_tokens), 0)",
		"COALESCE(SUM(output_tokens), 0)",
	).
		From(entsql.Table(llmEventTableName)).
		GroupBy("model").
		OrderBy("model")

	var usage []LLMModelUsage
	err := r.query(ctx, sel, func(rows *entsql.Rows) error {
		var mu LLMModelUsage
		if err := rows.Scan(&mu.Model, &mu.Calls, &mu.Failures, &mu.InputTokens, &mu.OutputTokens); err != nil {
			return err
		}
		usage = append(usage, mu)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	return usage, nil
}

func scanLLMEvent(rows *entsql.Rows) (*LLMEventRecord, error) {
	var rec LLMEventRecord
	var ts int64
	err := rows.Scan(
		&rec.ID,
		&rec.Sequence,
		&ts,
		&rec.Provider,
		&rec.Model,
		&rec.Purpose,
		&rec.InputTokens,
		&rec.OutputTokens,
		&rec.LatencyMs,
		&rec.Success,
		&rec.ErrorMessage,
		&rec.RequestBody,
		&rec.ResponseBody,
	)
	if err != nil {
		return nil, fmt.Errorf("scan LLM event: %w", err)
	}
	rec.Timestamp = time.UnixMilli(ts).UTC()
	return &rec, nil
}
