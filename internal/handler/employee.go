package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/accesslab/employee-auth-api/internal/model"
)

// EmployeeStore is the persistence surface the employee endpoints consume.
type EmployeeStore interface {
	List(ctx context.Context) ([]model.Employee, error)
	Get(ctx context.Context, id uint64) (model.Employee, error)
	Create(ctx context.Context, firstname, lastname string) (model.Employee, error)
	Update(ctx context.Context, id uint64, firstname, lastname *string) (model.Employee, error)
	Delete(ctx context.Context, id uint64) (bool, error)
}

// EmployeeHandler serves the role-gated employee CRUD. Authorization is done
// entirely by the middleware chain; handlers assume it already ran.
type EmployeeHandler struct {
	Employees EmployeeStore
}

func NewEmployeeHandler(store EmployeeStore) *EmployeeHandler {
	return &EmployeeHandler{Employees: store}
}

type employeeCreateReq struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

type employeeUpdateReq struct {
	ID        uint64  `json:"id"`
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
}

// GetAll returns every employee, or 204 when the table is empty.
func (h *EmployeeHandler) GetAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	employees, err := h.Employees.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list employees failed"})
	}
	if len(employees) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, employees)
}

// Get returns a single employee by path id.
func (h *EmployeeHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid employee id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	e, err := h.Employees.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.NoContent(http.StatusNoContent)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get employee failed"})
	}
	return c.JSON(http.StatusOK, e)
}

// Create inserts an employee. Requires Admin or Editor (enforced upstream).
func (h *EmployeeHandler) Create(c echo.Context) error {
	var req employeeCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Firstname == "" || req.Lastname == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "firstname and lastname are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	e, err := h.Employees.Create(ctx, req.Firstname, req.Lastname)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create employee failed"})
	}
	return c.JSON(http.StatusCreated, e)
}

// Update overwrites the provided fields of an existing employee.
func (h *EmployeeHandler) Update(c echo.Context) error {
	var req employeeUpdateReq
	if err := c.Bind(&req); err != nil || req.ID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "employee id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	e, err := h.Employees.Update(ctx, req.ID, req.Firstname, req.Lastname)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.NoContent(http.StatusNoContent)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update employee failed"})
	}
	return c.JSON(http.StatusOK, e)
}

// Delete removes an employee. Requires Admin (enforced upstream).
func (h *EmployeeHandler) Delete(c echo.Context) error {
	var req employeeUpdateReq
	if err := c.Bind(&req); err != nil || req.ID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "employee id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	deleted, err := h.Employees.Delete(ctx, req.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete employee failed"})
	}
	if !deleted {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "employee deleted"})
}
