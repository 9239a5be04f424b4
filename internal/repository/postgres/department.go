package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository"
)

type departmentRepository struct {
	BaseRepository
}

func NewDepartmentRepository(base BaseRepository) repository.DepartmentRepository {
	return &departmentRepository{base}
}

func (r *departmentRepository) Create(ctx context.Context, dept *model.Department) error {
	query := `
		INSERT INTO departments (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if dept.ID == uuid.Nil {
		dept.ID = uuid.New()
	}
	dept.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query, dept.ID, dept.Name, dept.Description, dept.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create department: %w", err)
	}
	return nil
}

func (r *departmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	query := `
		SELECT id, name, description, created_at
		FROM departments
		WHERE id = $1
	`
	var dept model.Department
	if err := r.db.GetContext(ctx, &dept, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]*model.Department, error) {
	query := `
		SELECT id, name, description, created_at
		FROM departments
		ORDER BY name ASC
	`
	var depts []*model.Department
	if err := r.db.SelectContext(ctx, &depts, query); err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return depts, nil
}
