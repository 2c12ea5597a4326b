package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"servibook-backend/internal/domain"
	"servibook-backend/internal/repository"
)

type requestRepository struct {
	db DBTX
}

func NewRequestRepository(db DBTX) repository.RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.ServiceRequest) error {
	query := `INSERT INTO service_requests (client_id, category, description, event_time, closed, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, false, $5, $5) RETURNING id`
	now := time.Now()
	req.Closed = false
	req.CreatedOn = now
	req.UpdatedOn = now
	return r.db.QueryRowContext(ctx, query, req.ClientID, req.Category, req.Description, req.EventTime, now).Scan(&req.ID)
}

func (r *requestRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	req := &domain.ServiceRequest{}
	query := `SELECT id, client_id, category, description, event_time, closed, created_on, updated_on
	          FROM service_requests WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&req.ID, &req.ClientID, &req.Category, &req.Description, &req.EventTime, &req.Closed, &req.CreatedOn, &req.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: service request %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *requestRepository) Close(ctx context.Context, id int64) error {
	query := `UPDATE service_requests SET closed = true, updated_on = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: service request %d", domain.ErrNotFound, id)
	}
	return nil
}
