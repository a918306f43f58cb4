package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/dispute-service/internal/domain"
)

// DisputeFilter captures dashboard search parameters.
type DisputeFilter struct {
	UserID     *string
	Statuses   []domain.DisputeStatus
	Priorities []domain.Priority
	SearchTerm *string
	Limit      int
	Offset     int
}

// DisputeSummary aggregates open-case counters for the dashboard.
type DisputeSummary struct {
	Total      int64
	Open       int64
	Resolved   int64
	ByPriority map[domain.Priority]int64
}

// DisputeRepository encapsulates dispute persistence.
type DisputeRepository interface {
	Create(ctx context.Context, dispute *domain.Dispute) error
	Update(ctx context.Context, dispute *domain.Dispute) error
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Dispute, error)
	ExistingTicketIDs(ctx context.Context, ticketIDs []string) (map[string]struct{}, error)
	InsertMany(ctx context.Context, disputes []domain.Dispute) (int, error)
	ListWithFilter(ctx context.Context, filter DisputeFilter) ([]domain.Dispute, error)
	Summary(ctx context.Context) (*DisputeSummary, error)
}

type disputeRepository struct {
	pool *pgxpool.Pool
}

// NewDisputeRepository instantiates repository.
func NewDisputeRepository(pool *pgxpool.Pool) DisputeRepository {
	return &disputeRepository{pool: pool}
}

const disputeColumns = `id, ticket_id, user_id, amount, issue_category, channel, status, priority,
               stage, present_stage, days_open, days_in_present_stage, recommended_action,
               created_at, updated_at`

func (r *disputeRepository) Create(ctx context.Context, dispute *domain.Dispute) error {
	const query = `
        INSERT INTO disputes (ticket_id, user_id, amount, issue_category, channel, status, priority,
                              stage, present_stage, days_open, days_in_present_stage, recommended_action)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		dispute.TicketID,
		dispute.UserID,
		dispute.Amount,
		dispute.IssueCategory,
		dispute.Channel,
		dispute.Status,
		dispute.Priority,
		dispute.Stage,
		dispute.PresentStage,
		dispute.DaysOpen,
		dispute.DaysInPresentStage,
		dispute.RecommendedAction,
	).Scan(&dispute.ID, &dispute.CreatedAt, &dispute.UpdatedAt)
}

func (r *disputeRepository) Update(ctx context.Context, dispute *domain.Dispute) error {
	const query = `
        UPDATE disputes SET status=$1, priority=$2, stage=$3, present_stage=$4, days_open=$5,
            days_in_present_stage=$6, recommended_action=$7, updated_at=NOW()
        WHERE ticket_id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		dispute.Status,
		dispute.Priority,
		dispute.Stage,
		dispute.PresentStage,
		dispute.DaysOpen,
		dispute.DaysInPresentStage,
		dispute.RecommendedAction,
		dispute.TicketID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *disputeRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Dispute, error) {
	query := fmt.Sprintf(`SELECT %s FROM disputes WHERE ticket_id=$1`, disputeColumns)
	var dispute domain.Dispute
	if err := scanDispute(r.pool.QueryRow(ctx, query, ticketID), &dispute); err != nil {
		return nil, err
	}
	return &dispute, nil
}

func (r *disputeRepository) ExistingTicketIDs(ctx context.Context, ticketIDs []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(ticketIDs))
	if len(ticketIDs) == 0 {
		return existing, nil
	}
	const query = `SELECT ticket_id FROM disputes WHERE ticket_id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ticketIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = struct{}{}
	}
	return existing, rows.Err()
}

// InsertMany inserts a normalized batch, silently skipping ticket ids that
// already exist. The unique index backs the first-write-wins contract even
// when two batches race past the ExistingTicketIDs pre-check.
func (r *disputeRepository) InsertMany(ctx context.Context, disputes []domain.Dispute) (int, error) {
	if len(disputes) == 0 {
		return 0, nil
	}
	const query = `
        INSERT INTO disputes (ticket_id, user_id, amount, issue_category, channel, status, priority,
                              stage, present_stage, days_open, days_in_present_stage, recommended_action)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        ON CONFLICT (ticket_id) DO NOTHING`

	batch := &pgx.Batch{}
	for _, d := range disputes {
		batch.Queue(query,
			d.TicketID, d.UserID, d.Amount, d.IssueCategory, d.Channel, d.Status, d.Priority,
			d.Stage, d.PresentStage, d.DaysOpen, d.DaysInPresentStage, d.RecommendedAction)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close() //nolint:errcheck

	inserted := 0
	for range disputes {
		cmd, err := results.Exec()
		if err != nil {
			return inserted, err
		}
		inserted += int(cmd.RowsAffected())
	}
	return inserted, nil
}

func (r *disputeRepository) ListWithFilter(ctx context.Context, filter DisputeFilter) ([]domain.Dispute, error) {
	base := fmt.Sprintf(`SELECT %s FROM disputes`, disputeColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(ticket_id) LIKE %s OR LOWER(issue_category) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDisputes(rows)
}

func (r *disputeRepository) Summary(ctx context.Context) (*DisputeSummary, error) {
	const query = `SELECT priority, status, COUNT(*) FROM disputes GROUP BY priority, status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := &DisputeSummary{ByPriority: make(map[domain.Priority]int64)}
	for rows.Next() {
		var (
			priority domain.Priority
			status   domain.DisputeStatus
			count    int64
		)
		if err := rows.Scan(&priority, &status, &count); err != nil {
			return nil, err
		}
		summary.Total += count
		if status == domain.DisputeStatusResolved {
			summary.Resolved += count
		} else {
			summary.Open += count
		}
		summary.ByPriority[priority] += count
	}
	return summary, rows.Err()
}

func scanDispute(row pgx.Row, dispute *domain.Dispute) error {
	return row.Scan(
		&dispute.ID,
		&dispute.TicketID,
		&dispute.UserID,
		&dispute.Amount,
		&dispute.IssueCategory,
		&dispute.Channel,
		&dispute.Status,
		&dispute.Priority,
		&dispute.Stage,
		&dispute.PresentStage,
		&dispute.DaysOpen,
		&dispute.DaysInPresentStage,
		&dispute.RecommendedAction,
		&dispute.CreatedAt,
		&dispute.UpdatedAt,
	)
}

func scanDisputes(rows pgx.Rows) ([]domain.Dispute, error) {
	var result []domain.Dispute
	for rows.Next() {
		var dispute domain.Dispute
		if err := scanDispute(rows, &dispute); err != nil {
			return nil, err
		}
		result = append(result, dispute)
	}
	return result, rows.Err()
}
