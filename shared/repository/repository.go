package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"natours/infras/otel"
	"natours/infras/postgres"
	"natours/shared/constant"
	"natours/shared/dto"
	"natours/shared/failure"
	"natours/shared/logger"

	"github.com/lib/pq"
)

const (
	scopeArgPrefix = "scope_"
	setArgPrefix   = "set_"
)

var (
	errRequiredFilter = errors.New("required filter")
)

type column struct {
	name   string
	table  string
	alias  string
	hidden bool
}

// key is the name a column is addressed by from outside: its alias for joined columns.
func (c column) key() string {
	if c.alias != "" {
		return c.alias
	}

	return c.name
}

func (c column) qualified() string {
	return fmt.Sprintf("%s.%s", c.table, c.name)
}

type execer interface {
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

// Option customises a Repository at construction.
type Option func(*options)

type options struct {
	scope []dto.Filter
}

// WithScope adds a filter applied to every read, update and delete, e.g. "active = true".
func WithScope(filter dto.Filter) Option {
	return func(o *options) {
		if filter.ArgName == "" {
			filter.ArgName = scopeArgPrefix + filter.Field
		}

		o.scope = append(o.scope, filter)
	}
}

type Repository[T any] struct {
	db            *postgres.Connection
	otel          otel.Otel
	table         string
	entitas       string
	primaryColumn string
	columns       []column
	join          string
	scope         []dto.Filter
	InsertColumns []string
}

func NewRepository[T any](entitasName, tableName, primaryColumn string, dbConnection *postgres.Connection, otl otel.Otel, opts ...Option) Repository[T] {
	var zero T

	reflectType := reflect.TypeOf(zero)
	columns, insertColumns := getColumns(tableName, reflectType)

	valueOf := reflect.ValueOf(zero)
	method := valueOf.MethodByName("GetJoinQuery")
	joinQueryStr := ""

	if method.IsValid() {
		joinQuery := method.Call([]reflect.Value{})

		if len(joinQuery) > 0 {
			joinQueryStr = joinQuery[0].String()
		}
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}

	for idx := range opt.scope {
		if opt.scope[idx].Table == "" {
			opt.scope[idx].Table = tableName
		}
	}

	return Repository[T]{
		db:            dbConnection,
		otel:          otl,
		table:         tableName,
		entitas:       entitasName,
		primaryColumn: primaryColumn,
		columns:       columns,
		join:          joinQueryStr,
		scope:         opt.scope,
		InsertColumns: insertColumns,
	}
}

// Unscoped returns a copy of the repository without its default scope.
func (repo Repository[T]) Unscoped() Repository[T] {
	repo.scope = nil

	return repo
}

func (repo *Repository[T]) insert(ctx context.Context, exec execer, model T) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.insert", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	placeholders := []string{}

	for _, col := range repo.InsertColumns {
		placeholders = append(placeholders, ":"+col)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", repo.table, strings.Join(repo.InsertColumns, ", "), strings.Join(placeholders, ", "))
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	_, err := exec.NamedExecContext(ctx, query, model)
	if err != nil {
		if translated := translateError(err); translated != nil {
			scope.TraceError(err)

			return translated
		}

		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to insert data (%s): %w", repo.entitas, err)
	}

	return nil
}

func (repo *Repository[T]) Insert(ctx context.Context, model T) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.Insert", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	return repo.insert(ctx, repo.db.Write, model) //nolint:wrapcheck
}

func (repo *Repository[T]) Exist(ctx context.Context, filter dto.FilterGroup) (bool, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.Exist", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	where, args := repo.BuildWhereClause(ctx, filter)
	if where == "" {
		return false, errRequiredFilter
	}

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s %s)", repo.table, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	exist := false

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to check exist data (%s): %w", repo.entitas, err)
	}
	defer prepare.Close()

	err = prepare.GetContext(ctx, &exist, args)

	if err != nil {
		if translated := translateError(err); translated != nil {
			scope.TraceError(err)

			return false, translated
		}

		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to check exist data (%s): %w", repo.entitas, err)
	}

	return exist, nil
}

// Get returns the zero value when nothing matches.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.Get", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	return repo.get(ctx, filter, false, columns...)
}

// GetWithHidden also selects the columns tagged select:"false". Only credential checks use it.
func (repo *Repository[T]) GetWithHidden(ctx context.Context, filter dto.FilterGroup) (T, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.GetWithHidden", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	return repo.get(ctx, filter, true)
}

func (repo *Repository[T]) get(ctx context.Context, filter dto.FilterGroup, withHidden bool, columns ...string) (T, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.get", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	where, args := repo.BuildWhereClause(ctx, filter)
	selectQuery := repo.getSelectQuery(ctx, withHidden, columns...)

	query := fmt.Sprintf("SELECT %s FROM %s %s %s LIMIT 1", selectQuery, repo.table, repo.join, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var model T

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return model, fmt.Errorf("failed to prepare statement (%s): %w", repo.entitas, err)
	}
	defer prepare.Close()

	err = prepare.GetContext(ctx, &model, args)
	if errors.Is(err, sql.ErrNoRows) {
		return model, nil
	}

	if err != nil {
		if translated := translateError(err); translated != nil {
			scope.TraceError(err)

			return model, translated
		}

		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return model, fmt.Errorf("failed to get data (%s): %w", repo.entitas, err)
	}

	return model, nil
}

// FindByID fails with a NotFound failure when no visible row has the id.
func (repo *Repository[T]) FindByID(ctx context.Context, id string) (T, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.FindByID", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	var zero T

	exist, err := repo.Exist(ctx, repo.byID(id))
	if err != nil {
		return zero, err
	}

	if !exist {
		return zero, repo.notFound()
	}

	return repo.Get(ctx, repo.byID(id))
}

// GetAll checks every field named by params and filter against the model's visible columns
// before building the statement; unknown names fail with a BadRequest failure.
func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup) ([]T, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.GetAll", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	filter, err := repo.Qualify(filter)
	if err != nil {
		return nil, err
	}

	fields := params.Fields
	for _, field := range fields {
		if _, ok := repo.lookup(field); !ok {
			return nil, unknownField(field)
		}
	}

	if len(fields) > 0 && !slices.Contains(fields, repo.primaryColumn) {
		fields = append([]string{repo.primaryColumn}, fields...)
	}

	ordering, err := repo.orderBy(params.Sort)
	if err != nil {
		return nil, err
	}

	where, args := repo.BuildWhereClause(ctx, filter)
	selectQuery := repo.getSelectQuery(ctx, false, fields...)

	var pagination string

	if params.Limit > 0 {
		args["limit"] = params.Limit
		args["offset"] = params.Offset()

		pagination = "LIMIT :limit OFFSET :offset"
	}

	query := fmt.Sprintf("SELECT %s FROM %s %s %s %s %s", selectQuery, repo.table, repo.join, where, ordering, pagination)

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	models := []T{}

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return models, fmt.Errorf("failed to prepare statement (%s): %w", repo.entitas, err)
	}
	defer prepare.Close()

	err = prepare.SelectContext(ctx, &models, args)
	if err != nil {
		if translated := translateError(err); translated != nil {
			return models, translated
		}

		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return models, fmt.Errorf("failed to get all data (%s): %w", repo.entitas, err)
	}

	return models, nil
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (int, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.Count", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	filter, err := repo.Qualify(filter)
	if err != nil {
		return 0, err
	}

	where, args := repo.BuildWhereClause(ctx, filter)

	query := fmt.Sprintf("SELECT COUNT(%s.%s) FROM %s %s %s", repo.table, repo.primaryColumn, repo.table, repo.join, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var count int

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to prepare statement (%s): %w", repo.entitas, err)
	}
	defer prepare.Close()

	err = prepare.GetContext(ctx, &count, args)
	if err != nil {
		if translated := translateError(err); translated != nil {
			return 0, translated
		}

		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to count data (%s): %w", repo.entitas, err)
	}

	return count, nil
}

func (repo *Repository[T]) delete(ctx context.Context, exec execer, filter dto.FilterGroup) (int64, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.delete", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	where, args := repo.BuildWhereClause(ctx, filter)
	if where == "" {
		return 0, errRequiredFilter
	}

	query := fmt.Sprintf("DELETE FROM %s %s", repo.table, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	res, err := exec.NamedExecContext(ctx, query, args)
	if err != nil {
		if translated := translateError(err); translated != nil {
			scope.TraceError(err)

			return 0, translated
		}

		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to delete data (%s): %w", repo.entitas, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows (%s): %w", repo.entitas, err)
	}

	return affected, nil
}

func (repo *Repository[T]) Delete(ctx context.Context, filter dto.FilterGroup) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.Delete", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	_, err := repo.delete(ctx, repo.db.Write, filter)

	return err
}

// DeleteByID removes one row permanently; a missing row is a NotFound failure.
func (repo *Repository[T]) DeleteByID(ctx context.Context, id string) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.DeleteByID", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	affected, err := repo.delete(ctx, repo.db.Write, repo.byID(id))
	if err != nil {
		return err
	}

	if affected == 0 {
		return repo.notFound()
	}

	return nil
}

func (repo *Repository[T]) update(ctx context.Context, exec execer, mod map[string]any, filter dto.FilterGroup) (int64, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.update", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	if len(mod) == 0 {
		return 0, failure.BadRequestFromString("update request cannot be empty") //nolint:wrapcheck
	}

	updateField := []string{}
	values := map[string]any{}

	for _, col := range slices.Sorted(maps.Keys(mod)) {
		updateField = append(updateField, fmt.Sprintf("%s = :%s%s", col, setArgPrefix, col))
		values[setArgPrefix+col] = mod[col]
	}

	where, args := repo.BuildWhereClause(ctx, filter)
	if where == "" {
		return 0, errRequiredFilter
	}

	updateQuery := strings.Join(updateField, ", ")
	query := fmt.Sprintf("UPDATE %s SET %s %s", repo.table, updateQuery, where)

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)
	maps.Copy(args, values)

	res, err := exec.NamedExecContext(ctx, query, args)
	if err != nil {
		if translated := translateError(err); translated != nil {
			scope.TraceError(err)

			return 0, translated
		}

		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to update data (%s): %w", repo.entitas, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows (%s): %w", repo.entitas, err)
	}

	return affected, nil
}

func (repo *Repository[T]) Update(ctx context.Context, mod map[string]any, filter dto.FilterGroup) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.Update", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	_, err := repo.update(ctx, repo.db.Write, mod, filter)

	return err
}

// UpdateByID applies the column changes to one row; a missing row is a NotFound failure.
func (repo *Repository[T]) UpdateByID(ctx context.Context, id string, mod map[string]any) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.UpdateByID", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	affected, err := repo.update(ctx, repo.db.Write, mod, repo.byID(id))
	if err != nil {
		return err
	}

	if affected == 0 {
		return repo.notFound()
	}

	return nil
}

func (repo *Repository[T]) InsertBulk(ctx context.Context, models []T) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.InsertBulk", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	if len(models) == 0 {
		return nil
	}

	return repo.insertBulk(ctx, repo.db.Write, models)
}

func (repo *Repository[T]) insertBulk(ctx context.Context, exec execer, models []T) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.insertBulk", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	var err error

	placeholder := []string{}
	for _, column := range repo.InsertColumns {
		placeholder = append(placeholder, ":"+column)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", repo.table, strings.Join(repo.InsertColumns, ", "), strings.Join(placeholder, ", "))

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	_, err = exec.NamedExecContext(ctx, query, models)
	if err != nil {
		scope.TraceError(err)

		if translated := translateError(err); translated != nil {
			return translated
		}

		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to bulk insert %s: %w", repo.entitas, err)
	}

	return nil
}

// Qualify resolves every filter field to its table-qualified column name.
func (repo *Repository[T]) Qualify(filter dto.FilterGroup) (dto.FilterGroup, error) {
	res := dto.FilterGroup{Operator: filter.Operator}

	for _, item := range filter.Filters {
		switch fill := item.(type) {
		case dto.Filter:
			if fill.Operator == dto.FilterPlainQuery {
				res.Filters = append(res.Filters, fill)

				continue
			}

			col, ok := repo.lookup(fill.Field)
			if !ok {
				return dto.FilterGroup{}, unknownField(fill.Field)
			}

			if fill.ArgName == "" {
				fill.ArgName = fill.Field
			}

			fill.Field = col.name
			fill.Table = col.table

			res.Filters = append(res.Filters, fill)
		case dto.FilterGroup:
			group, err := repo.Qualify(fill)
			if err != nil {
				return dto.FilterGroup{}, err
			}

			res.Filters = append(res.Filters, group)
		}
	}

	return res, nil
}

func (repo *Repository[T]) lookup(key string) (column, bool) {
	idx := slices.IndexFunc(repo.columns, func(col column) bool {
		return !col.hidden && col.key() == key
	})

	if idx == -1 {
		return column{}, false
	}

	return repo.columns[idx], true
}

func (repo *Repository[T]) orderBy(sort []dto.SortField) (string, error) {
	if len(sort) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(sort)+1)
	hasPrimary := false

	for _, s := range sort {
		col, ok := repo.lookup(s.Field)
		if !ok {
			return "", unknownField(s.Field)
		}

		dir := dto.SortDirAsc
		if s.Dir == dto.SortDirDesc {
			dir = dto.SortDirDesc
		}

		if col.name == repo.primaryColumn && col.table == repo.table {
			hasPrimary = true
		}

		parts = append(parts, fmt.Sprintf("%s %s", col.qualified(), dir))
	}

	// a unique tie-breaker keeps page boundaries stable
	if !hasPrimary {
		parts = append(parts, fmt.Sprintf("%s.%s %s", repo.table, repo.primaryColumn, dto.SortDirAsc))
	}

	return "ORDER BY " + strings.Join(parts, ", "), nil
}

func (repo *Repository[T]) getSelectQuery(ctx context.Context, withHidden bool, columnsParam ...string) string {
	_, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.getSelectQuery", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	columns := []string{}
	for _, col := range repo.columns {
		if col.hidden && !withHidden {
			continue
		}

		if len(columnsParam) > 0 && !slices.Contains(columnsParam, col.key()) {
			continue
		}

		if col.alias != "" {
			columns = append(columns, fmt.Sprintf("%s AS %s", col.qualified(), col.alias))
		} else {
			columns = append(columns, col.qualified())
		}
	}

	return strings.Join(columns, ", ")
}

// BuildWhereClause combines the default scope with filter.
func (repo *Repository[T]) BuildWhereClause(ctx context.Context, filter dto.FilterGroup) (string, map[string]any) {
	_, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.BuildWhereClause", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	combined := dto.And(dto.Where(repo.scope...), filter)
	where, args := combined.GetWhereClause()

	if where == "" {
		return where, map[string]any{}
	}

	return fmt.Sprintf(" WHERE %s ", where), args
}

func (repo *Repository[T]) byID(id string) dto.FilterGroup {
	return dto.Where(dto.Filter{
		ArgName:  "by_" + repo.primaryColumn,
		Field:    repo.primaryColumn,
		Value:    id,
		Operator: dto.FilterOperatorEq,
		Table:    repo.table,
	})
}

func (repo *Repository[T]) notFound() error {
	return failure.NotFound(fmt.Sprintf("No %s found with that ID", repo.entitas)) //nolint:wrapcheck
}

func unknownField(field string) error {
	return failure.BadRequestFromString(fmt.Sprintf("unknown field: %s", field)) //nolint:wrapcheck
}

// translateError maps storage errors the client caused to failures; anything else yields nil.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch string(pqErr.Code) {
	case constant.PqErrorCodeUniqueViolation:
		return failure.Conflict(fmt.Sprintf("Duplicate field value: %s. Please use another value!", duplicateDetail(pqErr))) //nolint:wrapcheck
	case constant.PqErrorCodeFkViolation:
		return failure.BadRequestFromString(fmt.Sprintf("Invalid reference: %s", pqErr.Detail)) //nolint:wrapcheck
	case constant.PqErrorCodeInvalidText, constant.PqErrorCodeCheckViolation:
		return failure.BadRequestFromString(fmt.Sprintf("Invalid input data. %s", pqErr.Message)) //nolint:wrapcheck
	}

	return nil
}

// duplicateDetail extracts "(email)=(a@b.c)" from the pq detail message.
func duplicateDetail(pqErr *pq.Error) string {
	detail := pqErr.Detail

	start := strings.Index(detail, "(")
	end := strings.LastIndex(detail, ")")

	if start == -1 || end <= start {
		return pqErr.Constraint
	}

	return detail[start : end+1]
}

func getColumns(table string, reflectType reflect.Type) (columns []column, insertColumns []string) {
	for i := range reflectType.NumField() {
		field := reflectType.Field(i)
		dbTag := field.Tag.Get("db")
		tableField := field.Tag.Get("table")
		colTag := field.Tag.Get("column")
		hidden := field.Tag.Get("select") == "false"

		if tableField == "" {
			tableField = table
		}

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			col, insertCol := getColumns(table, field.Type)
			columns = append(columns, col...)
			insertColumns = append(insertColumns, insertCol...)

			continue
		}

		if dbTag == "" || dbTag == "-" {
			continue
		}

		if tableField == table && colTag == "" {
			insertColumns = append(insertColumns, dbTag)
		}

		if colTag == "" {
			columns = append(columns, column{name: dbTag, table: tableField, hidden: hidden})
		} else {
			columns = append(columns, column{name: colTag, table: tableField, alias: dbTag, hidden: hidden})
		}
	}

	return columns, insertColumns
}
