package engineinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/Abraxas-365/craftable/storex"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pelangilabs/moltbot/engine"
	"github.com/pelangilabs/moltbot/pkg/kernel"
)

type PostgresWorkflowRepository struct {
	db *sqlx.DB
}

var _ engine.WorkflowRepository = (*PostgresWorkflowRepository)(nil)

func NewPostgresWorkflowRepository(db *sqlx.DB) *PostgresWorkflowRepository {
	return &PostgresWorkflowRepository{db: db}
}

// dbWorkflow is an intermediate struct for database operations
type dbWorkflow struct {
	ID          string          `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Model       string          `db:"model"`
	Trigger     json.RawMessage `db:"trigger"`
	Steps       json.RawMessage `db:"steps"`
	Nodes       json.RawMessage `db:"nodes"`
	StartNodeID string          `db:"start_node_id"`
	IsActive    bool            `db:"is_active"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// toDBWorkflow converts domain Workflow to dbWorkflow
func toDBWorkflow(wf engine.Workflow) (*dbWorkflow, error) {
	triggerJSON, err := json.Marshal(wf.Trigger)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trigger: %w", err)
	}

	stepsJSON := []byte("[]")
	if len(wf.Steps) > 0 {
		stepsJSON, err = json.Marshal(wf.Steps)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal steps: %w", err)
		}
	}

	nodesJSON := []byte("[]")
	if len(wf.Nodes) > 0 {
		nodesJSON, err = json.Marshal(wf.Nodes)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal nodes: %w", err)
		}
	}

	return &dbWorkflow{
		ID:          wf.ID.String(),
		Name:        wf.Name,
		Description: wf.Description,
		Model:       string(wf.Model),
		Trigger:     triggerJSON,
		Steps:       stepsJSON,
		Nodes:       nodesJSON,
		StartNodeID: wf.StartNodeID,
		IsActive:    wf.IsActive,
		CreatedAt:   wf.CreatedAt,
		UpdatedAt:   wf.UpdatedAt,
	}, nil
}

// toDomainWorkflow converts dbWorkflow to domain Workflow
func toDomainWorkflow(dbWf *dbWorkflow) (*engine.Workflow, error) {
	var trigger []string
	if len(dbWf.Trigger) > 0 && string(dbWf.Trigger) != "null" {
		if err := json.Unmarshal(dbWf.Trigger, &trigger); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger: %w", err)
		}
	}

	var steps []engine.Step
	if len(dbWf.Steps) > 0 && string(dbWf.Steps) != "null" {
		if err := json.Unmarshal(dbWf.Steps, &steps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
		}
	}

	var nodes []engine.Node
	if len(dbWf.Nodes) > 0 && string(dbWf.Nodes) != "null" {
		if err := json.Unmarshal(dbWf.Nodes, &nodes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal nodes: %w", err)
		}
	}

	return &engine.Workflow{
		ID:          kernel.WorkflowID(dbWf.ID),
		Name:        dbWf.Name,
		Description: dbWf.Description,
		Model:       engine.Model(dbWf.Model),
		Trigger:     trigger,
		Steps:       steps,
		Nodes:       nodes,
		StartNodeID: dbWf.StartNodeID,
		IsActive:    dbWf.IsActive,
		CreatedAt:   dbWf.CreatedAt,
		UpdatedAt:   dbWf.UpdatedAt,
	}, nil
}

func (r *PostgresWorkflowRepository) Save(ctx context.Context, wf engine.Workflow) error {
	exists, err := r.workflowExists(ctx, wf.ID)
	if err != nil {
		return errx.Wrap(err, "failed to check workflow existence", errx.TypeInternal)
	}

	if exists {
		return r.update(ctx, wf)
	}
	return r.create(ctx, wf)
}

func (r *PostgresWorkflowRepository) create(ctx context.Context, wf engine.Workflow) error {
	dbWf, err := toDBWorkflow(wf)
	if err != nil {
		return errx.Wrap(err, "failed to convert workflow", errx.TypeInternal).
			WithDetail("workflow_id", wf.ID.String())
	}

	query := `
		INSERT INTO workflows (
			id, name, description, model, trigger, steps, nodes,
			start_node_id, is_active, created_at, updated_at
		) VALUES (
			:id, :name, :description, :model, :trigger, :steps, :nodes,
			:start_node_id, :is_active, :created_at, :updated_at
		)`

	_, err = r.db.NamedExecContext(ctx, query, dbWf)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				return engine.ErrWorkflowAlreadyExists().WithDetail("name", wf.Name)
			}
		}
		return errx.Wrap(err, "failed to create workflow", errx.TypeInternal).
			WithDetail("workflow_id", wf.ID.String())
	}

	return nil
}

func (r *PostgresWorkflowRepository) update(ctx context.Context, wf engine.Workflow) error {
	dbWf, err := toDBWorkflow(wf)
	if err != nil {
		return errx.Wrap(err, "failed to convert workflow", errx.TypeInternal).
			WithDetail("workflow_id", wf.ID.String())
	}

	query := `
		UPDATE workflows SET
			name = :name,
			description = :description,
			model = :model,
			trigger = :trigger,
			steps = :steps,
			nodes = :nodes,
			start_node_id = :start_node_id,
			is_active = :is_active,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, dbWf)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				return engine.ErrWorkflowAlreadyExists().WithDetail("name", wf.Name)
			}
		}
		return errx.Wrap(err, "failed to update workflow", errx.TypeInternal).
			WithDetail("workflow_id", wf.ID.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}

	if rowsAffected == 0 {
		return engine.ErrDefinitionNotFound().WithDetail("workflow_id", wf.ID.String())
	}

	return nil
}

func (r *PostgresWorkflowRepository) FindByID(ctx context.Context, id kernel.WorkflowID) (*engine.Workflow, error) {
	query := `
		SELECT
			id, name, description, model, trigger, steps, nodes,
			start_node_id, is_active, created_at, updated_at
		FROM workflows
		WHERE id = $1`

	var dbWf dbWorkflow
	err := r.db.GetContext(ctx, &dbWf, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, engine.ErrDefinitionNotFound().WithDetail("workflow_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find workflow by id", errx.TypeInternal).
			WithDetail("workflow_id", id.String())
	}

	return toDomainWorkflow(&dbWf)
}

func (r *PostgresWorkflowRepository) Delete(ctx context.Context, id kernel.WorkflowID) error {
	query := `DELETE FROM workflows WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return errx.Wrap(err, "failed to delete workflow", errx.TypeInternal).
			WithDetail("workflow_id", id.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}

	if rowsAffected == 0 {
		return engine.ErrDefinitionNotFound().WithDetail("workflow_id", id.String())
	}

	return nil
}

func (r *PostgresWorkflowRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM workflows WHERE name = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, name)
	if err != nil {
		return false, errx.Wrap(err, "failed to check workflow existence by name", errx.TypeInternal).
			WithDetail("name", name)
	}

	return exists, nil
}

func (r *PostgresWorkflowRepository) FindActive(ctx context.Context) ([]*engine.Workflow, error) {
	query := `
		SELECT
			id, name, description, model, trigger, steps, nodes,
			start_node_id, is_active, created_at, updated_at
		FROM workflows
		WHERE is_active = true
		ORDER BY name ASC`

	var dbWorkflows []dbWorkflow
	err := r.db.SelectContext(ctx, &dbWorkflows, query)
	if err != nil {
		return nil, errx.Wrap(err, "failed to find active workflows", errx.TypeInternal)
	}

	result := make([]*engine.Workflow, 0, len(dbWorkflows))
	for i := range dbWorkflows {
		wf, err := toDomainWorkflow(&dbWorkflows[i])
		if err != nil {
			return nil, errx.Wrap(err, "failed to convert workflow", errx.TypeInternal)
		}
		result = append(result, wf)
	}

	return result, nil
}

func (r *PostgresWorkflowRepository) List(ctx context.Context, req engine.WorkflowListRequest) (engine.WorkflowListResponse, error) {
	conditions := []string{"1=1"}
	var args []any
	argPos := 1

	if req.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}

	if req.Model != nil {
		conditions = append(conditions, fmt.Sprintf("model = $%d", argPos))
		args = append(args, string(*req.Model))
		argPos++
	}

	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argPos, argPos+1))
		searchPattern := "%" + req.Search + "%"
		args = append(args, searchPattern, searchPattern)
		argPos += 2
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM workflows WHERE %s", whereClause)
	var total int
	err := r.db.GetContext(ctx, &total, countQuery, args...)
	if err != nil {
		return engine.WorkflowListResponse{}, errx.Wrap(err, "failed to count workflows", errx.TypeInternal)
	}

	dataQuery := fmt.Sprintf(`
		SELECT
			id, name, description, model, trigger, steps, nodes,
			start_node_id, is_active, created_at, updated_at
		FROM workflows
		WHERE %s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d`,
		whereClause, argPos, argPos+1)

	args = append(args, req.PageSize, req.GetOffset())

	var dbWorkflows []dbWorkflow
	err = r.db.SelectContext(ctx, &dbWorkflows, dataQuery, args...)
	if err != nil {
		return engine.WorkflowListResponse{}, errx.Wrap(err, "failed to list workflows", errx.TypeInternal)
	}

	workflows := make([]engine.Workflow, 0, len(dbWorkflows))
	for i := range dbWorkflows {
		wf, err := toDomainWorkflow(&dbWorkflows[i])
		if err != nil {
			return engine.WorkflowListResponse{}, errx.Wrap(err, "failed to convert workflow", errx.TypeInternal)
		}
		workflows = append(workflows, *wf)
	}

	return storex.NewPaginated(workflows, total, req.Page, req.PageSize), nil
}

func (r *PostgresWorkflowRepository) workflowExists(ctx context.Context, id kernel.WorkflowID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM workflows WHERE id = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, id.String())
	if err != nil {
		return false, err
	}

	return exists, nil
}
