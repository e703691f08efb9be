package pgsql

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/SscSPs/budget_request_app/internal/apperrors"
	"github.com/SscSPs/budget_request_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_request_app/internal/core/ports/repositories"
	"github.com/SscSPs/budget_request_app/internal/models"
	"github.com/SscSPs/budget_request_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const budgetRequestColumns = `
	request_id, owner_id, owner_name, department, category, title, description, amount,
	justification, urgency, account_code, attachments, status, validated_by, validated_at,
	version, created_at, updated_at`

type PgxBudgetRequestRepository struct {
	BaseRepository
}

// newPgxBudgetRequestRepository creates a new repository for budget requests.
func newPgxBudgetRequestRepository(pool *pgxpool.Pool) portsrepo.BudgetRequestRepositoryWithTx {
	return &PgxBudgetRequestRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxBudgetRequestRepository implements portsrepo.BudgetRequestRepositoryWithTx
var _ portsrepo.BudgetRequestRepositoryWithTx = (*PgxBudgetRequestRepository)(nil)

func scanBudgetRequest(row pgx.Row) (models.BudgetRequest, error) {
	var m models.BudgetRequest
	err := row.Scan(
		&m.RequestID,
		&m.OwnerID,
		&m.OwnerName,
		&m.Department,
		&m.Category,
		&m.Title,
		&m.Description,
		&m.Amount,
		&m.Justification,
		&m.Urgency,
		&m.AccountCode,
		&m.Attachments,
		&m.Status,
		&m.ValidatedBy,
		&m.ValidatedAt,
		&m.Version,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

// FindBudgetRequestByID loads the aggregate with its items and comments.
func (r *PgxBudgetRequestRepository) FindBudgetRequestByID(ctx context.Context, requestID string) (*domain.BudgetRequest, error) {
	query := `SELECT ` + budgetRequestColumns + ` FROM budget_requests WHERE request_id = $1;`

	m, err := scanBudgetRequest(r.Pool.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to find budget request "+requestID, err)
	}

	items, err := r.findItems(ctx, []string{requestID})
	if err != nil {
		return nil, err
	}
	comments, err := r.findComments(ctx, []string{requestID})
	if err != nil {
		return nil, err
	}

	d := mapping.ToDomainBudgetRequest(m, items[requestID], comments[requestID])
	return &d, nil
}

func (r *PgxBudgetRequestRepository) findItems(ctx context.Context, requestIDs []string) (map[string][]models.RequestItem, error) {
	query := `
		SELECT item_id, request_id, position, description, quantity, unit_price, total_price
		FROM request_items
		WHERE request_id = ANY($1)
		ORDER BY request_id, position;
	`
	rows, err := r.Pool.Query(ctx, query, requestIDs)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query request items", err)
	}
	defer rows.Close()

	out := make(map[string][]models.RequestItem, len(requestIDs))
	for rows.Next() {
		var it models.RequestItem
		if err := rows.Scan(&it.ItemID, &it.RequestID, &it.Position, &it.Description, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to scan request item row", err)
		}
		out[it.RequestID] = append(out[it.RequestID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "error iterating request item rows", err)
	}
	return out, nil
}

func (r *PgxBudgetRequestRepository) findComments(ctx context.Context, requestIDs []string) (map[string][]models.RequestComment, error) {
	query := `
		SELECT comment_id, request_id, author_id, author_name, content, created_at
		FROM request_comments
		WHERE request_id = ANY($1)
		ORDER BY request_id, created_at DESC, comment_id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, requestIDs)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query request comments", err)
	}
	defer rows.Close()

	out := make(map[string][]models.RequestComment, len(requestIDs))
	for rows.Next() {
		var c models.RequestComment
		if err := rows.Scan(&c.CommentID, &c.RequestID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt); err != nil {
			return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to scan request comment row", err)
		}
		out[c.RequestID] = append(out[c.RequestID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "error iterating request comment rows", err)
	}
	return out, nil
}

// QueryBudgetRequests returns one page of matching requests, newest first.
func (r *PgxBudgetRequestRepository) QueryBudgetRequests(ctx context.Context, pred domain.Predicate, page domain.PageRequest) (domain.Page[domain.BudgetRequest], error) {
	where, args, err := BuildWhereClause(pred)
	if err != nil {
		return domain.Page[domain.BudgetRequest]{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM budget_requests WHERE ` + where + `;`
	if err := r.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return domain.Page[domain.BudgetRequest]{}, apperrors.NewAppError(http.StatusInternalServerError, "failed to count budget requests", err)
	}
	if total == 0 || page.Offset() >= total {
		return domain.NewPage[domain.BudgetRequest](nil, page.Page, page.PageSize, total), nil
	}

	limitPos := len(args) + 1
	query := fmt.Sprintf(`SELECT %s FROM budget_requests WHERE %s ORDER BY created_at DESC, request_id DESC LIMIT $%d OFFSET $%d;`,
		budgetRequestColumns, where, limitPos, limitPos+1)
	pageArgs := append(append([]any{}, args...), page.PageSize, page.Offset())

	rows, err := r.Pool.Query(ctx, query, pageArgs...)
	if err != nil {
		return domain.Page[domain.BudgetRequest]{}, apperrors.NewAppError(http.StatusInternalServerError, "failed to query budget requests", err)
	}
	defer rows.Close()

	var rowsModels []models.BudgetRequest
	ids := []string{}
	for rows.Next() {
		m, err := scanBudgetRequest(rows)
		if err != nil {
			return domain.Page[domain.BudgetRequest]{}, apperrors.NewAppError(http.StatusInternalServerError, "failed to scan budget request row", err)
		}
		rowsModels = append(rowsModels, m)
		ids = append(ids, m.RequestID)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.BudgetRequest]{}, apperrors.NewAppError(http.StatusInternalServerError, "error iterating budget request rows", err)
	}
	rows.Close()

	items, err := r.findItems(ctx, ids)
	if err != nil {
		return domain.Page[domain.BudgetRequest]{}, err
	}
	comments, err := r.findComments(ctx, ids)
	if err != nil {
		return domain.Page[domain.BudgetRequest]{}, err
	}

	result := make([]domain.BudgetRequest, len(rowsModels))
	for i, m := range rowsModels {
		result[i] = mapping.ToDomainBudgetRequest(m, items[m.RequestID], comments[m.RequestID])
	}
	return domain.NewPage(result, page.Page, page.PageSize, total), nil
}

// AggregateStats folds per-status counts and sums into dashboard figures.
func (r *PgxBudgetRequestRepository) AggregateStats(ctx context.Context, pred domain.Predicate) (domain.RequestStats, error) {
	where, args, err := BuildWhereClause(pred)
	if err != nil {
		return domain.RequestStats{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	query := `SELECT status, COUNT(*), COALESCE(SUM(amount), 0) FROM budget_requests WHERE ` + where + ` GROUP BY status;`
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return domain.RequestStats{}, apperrors.NewAppError(http.StatusInternalServerError, "failed to aggregate budget requests", err)
	}
	defer rows.Close()

	stats := domain.NewRequestStats()
	for rows.Next() {
		var (
			status string
			count  int
			sum    decimal.Decimal
		)
		if err := rows.Scan(&status, &count, &sum); err != nil {
			return domain.RequestStats{}, apperrors.NewAppError(http.StatusInternalServerError, "failed to scan stats row", err)
		}
		stats.Add(domain.RequestStatus(status), count, sum)
	}
	if err := rows.Err(); err != nil {
		return domain.RequestStats{}, apperrors.NewAppError(http.StatusInternalServerError, "error iterating stats rows", err)
	}
	return stats, nil
}

func queueItemInserts(batch *pgx.Batch, items []models.RequestItem) {
	query := `
		INSERT INTO request_items (item_id, request_id, position, description, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, it := range items {
		batch.Queue(query, it.ItemID, it.RequestID, it.Position, it.Description, it.Quantity, it.UnitPrice, it.TotalPrice)
	}
}

func queueCommentInserts(batch *pgx.Batch, comments []models.RequestComment) {
	query := `
		INSERT INTO request_comments (comment_id, request_id, author_id, author_name, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for _, c := range comments {
		batch.Queue(query, c.CommentID, c.RequestID, c.AuthorID, c.AuthorName, c.Content, c.CreatedAt)
	}
}

// SaveBudgetRequest inserts a new request with its items and any initial comments in one transaction.
func (r *PgxBudgetRequestRepository) SaveBudgetRequest(ctx context.Context, req domain.BudgetRequest) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelBudgetRequest(req)
	query := `INSERT INTO budget_requests (` + budgetRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);`
	_, err = tx.Exec(ctx, query,
		m.RequestID, m.OwnerID, m.OwnerName, m.Department, m.Category, m.Title, m.Description, m.Amount,
		m.Justification, m.Urgency, m.AccountCode, m.Attachments, m.Status, m.ValidatedBy, m.ValidatedAt,
		m.Version, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to insert budget request "+m.RequestID, err)
	}

	batch := &pgx.Batch{}
	queueItemInserts(batch, mapping.ToModelRequestItems(req.ID, req.Items))
	comments := make([]models.RequestComment, len(req.Comments))
	for i, c := range req.Comments {
		comments[i] = mapping.ToModelComment(req.ID, c)
	}
	queueCommentInserts(batch, comments)
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return apperrors.NewAppError(http.StatusInternalServerError, "failed to insert children of budget request "+m.RequestID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// versionMiss tells a stale version apart from a missing row after a guarded write touched nothing.
func (r *PgxBudgetRequestRepository) versionMiss(ctx context.Context, tx pgx.Tx, requestID string) error {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM budget_requests WHERE request_id = $1);`, requestID).Scan(&exists)
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to check budget request "+requestID, err)
	}
	if !exists {
		return apperrors.ErrNotFound
	}
	return fmt.Errorf("%w: budget request %s", apperrors.ErrConflict, requestID)
}

// UpdateBudgetRequest writes the aggregate back guarded by its version.
func (r *PgxBudgetRequestRepository) UpdateBudgetRequest(ctx context.Context, upd portsrepo.BudgetRequestUpdate) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelBudgetRequest(upd.Request)
	query := `
		UPDATE budget_requests
		SET category = $3, title = $4, description = $5, amount = $6, justification = $7, urgency = $8,
		    account_code = $9, attachments = $10, status = $11, validated_by = $12, validated_at = $13,
		    updated_at = $14, version = version + 1
		WHERE request_id = $1 AND version = $2;
	`
	tag, err := tx.Exec(ctx, query,
		m.RequestID, upd.ExpectedVersion,
		m.Category, m.Title, m.Description, m.Amount, m.Justification, m.Urgency,
		m.AccountCode, m.Attachments, m.Status, m.ValidatedBy, m.ValidatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to update budget request "+m.RequestID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.versionMiss(ctx, tx, m.RequestID)
	}

	batch := &pgx.Batch{}
	if upd.ReplaceItems {
		batch.Queue(`DELETE FROM request_items WHERE request_id = $1;`, m.RequestID)
		queueItemInserts(batch, mapping.ToModelRequestItems(m.RequestID, upd.Request.Items))
	}
	comments := make([]models.RequestComment, len(upd.NewComments))
	for i, c := range upd.NewComments {
		comments[i] = mapping.ToModelComment(m.RequestID, c)
	}
	queueCommentInserts(batch, comments)
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return apperrors.NewAppError(http.StatusInternalServerError, "failed to write children of budget request "+m.RequestID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// DeleteBudgetRequest removes the request guarded by its version. Items and comments cascade.
func (r *PgxBudgetRequestRepository) DeleteBudgetRequest(ctx context.Context, requestID string, expectedVersion int64) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	tag, err := tx.Exec(ctx, `DELETE FROM budget_requests WHERE request_id = $1 AND version = $2;`, requestID, expectedVersion)
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to delete budget request "+requestID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.versionMiss(ctx, tx, requestID)
	}
	return r.Commit(ctx, tx)
}
