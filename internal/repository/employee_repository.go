package repository

import (
	"context"
	"database/sql"

	"github.com/accesslab/employee-auth-api/internal/model"
)

// EmployeeRepo persists the 'employees' table, the sample resource behind the
// role-gated endpoints.
type EmployeeRepo struct{ DB *sql.DB }

func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{DB: db} }

// List returns all employees ordered by id.
func (r *EmployeeRepo) List(ctx context.Context) ([]model.Employee, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id,firstname,lastname FROM employees ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Employee
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.Firstname, &e.Lastname); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get fetches one employee; absence surfaces as sql.ErrNoRows.
func (r *EmployeeRepo) Get(ctx context.Context, id uint64) (model.Employee, error) {
	var e model.Employee
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,firstname,lastname FROM employees WHERE id=? LIMIT 1", id).
		Scan(&e.ID, &e.Firstname, &e.Lastname)
	return e, err
}

// Create inserts an employee and returns the stored record.
func (r *EmployeeRepo) Create(ctx context.Context, firstname, lastname string) (model.Employee, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO employees (firstname, lastname) VALUES (?,?)", firstname, lastname)
	if err != nil {
		return model.Employee{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Employee{}, err
	}
	return model.Employee{ID: uint64(id), Firstname: firstname, Lastname: lastname}, nil
}

// Update overwrites the provided fields; nil pointers leave a column as-is.
// Returns sql.ErrNoRows when the employee does not exist.
func (r *EmployeeRepo) Update(ctx context.Context, id uint64, firstname, lastname *string) (model.Employee, error) {
	e, err := r.Get(ctx, id)
	if err != nil {
		return model.Employee{}, err
	}
	if firstname != nil {
		e.Firstname = *firstname
	}
	if lastname != nil {
		e.Lastname = *lastname
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE employees SET firstname=?, lastname=? WHERE id=?", e.Firstname, e.Lastname, id)
	if err != nil {
		return model.Employee{}, err
	}
	return e, nil
}

// Delete removes an employee row, reporting whether it existed.
func (r *EmployeeRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM employees WHERE id=?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
