package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// QueryParams selects the rows of a query.
type QueryParams struct {
	// Where is a condition without the WHERE keyword, for example
	// "PID = ? AND Event = ?".
	Where string

	// Args fill the placeholders of Where.
	Args []any

	// Limit caps the number of rows. Zero means no limit.
	Limit int

	// Offset skips rows. It only applies together with Limit.
	Offset int

	// OrderBy sorts the rows, without the ORDER BY keywords.
	OrderBy string
}

// DataReader reads the tables that a DataRecorder wrote.
type DataReader interface {
	// MapTable tells the reader which struct a table decodes into. A table
	// must be mapped before it is queried.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the mapped tables in name order.
	ListTables() []string

	// Query returns pointers to the decoded rows and the number of rows that
	// match, ignoring Limit and Offset.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	// Count returns the number of rows that match.
	Count(ctx context.Context, tableName string, params QueryParams) (
		int, error)

	// Close closes the database.
	Close() error
}

type sqliteReader struct {
	*sql.DB

	entryTypes map[string]reflect.Type
}

// NewReader opens a database written by a DataRecorder.
func NewReader(dbFilename string) DataReader {
	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		panic(err)
	}

	return NewReaderWithDB(db)
}

// NewReaderWithDB reads from an open database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		DB:         db,
		entryTypes: make(map[string]reflect.Type),
	}
}

// OpenRecording opens a database written through a HookRecorder, with its
// tables already mapped.
func OpenRecording(dbFilename string) DataReader {
	r := NewReader(dbFilename)
	r.MapTable(TableTLBAccess, TLBAccessEntry{})
	r.MapTable(TableMemAccess, MemAccessEntry{})
	r.MapTable(TableSchedEvent, SchedEventEntry{})

	return r
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	r.entryTypes[tableName] = reflect.TypeOf(sampleEntry)
}

func (r *sqliteReader) ListTables() []string {
	tables := make([]string, 0, len(r.entryTypes))
	for table := range r.entryTypes {
		tables = append(tables, table)
	}

	sort.Strings(tables)

	return tables
}

func (r *sqliteReader) entryType(tableName string) (reflect.Type, error) {
	t, ok := r.entryTypes[tableName]
	if !ok {
		return nil, fmt.Errorf("table %s is not mapped", tableName)
	}

	return t, nil
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	entryType, err := r.entryType(tableName)
	if err != nil {
		return nil, 0, err
	}

	totalCount, err := r.Count(ctx, tableName, params)
	if err != nil {
		return nil, 0, err
	}

	var query strings.Builder

	query.WriteString("SELECT * FROM " + tableName)
	query.WriteString(whereClause(params))

	if params.OrderBy != "" {
		query.WriteString(" ORDER BY " + params.OrderBy)
	}

	if params.Limit > 0 {
		fmt.Fprintf(&query, " LIMIT %d", params.Limit)

		if params.Offset > 0 {
			fmt.Fprintf(&query, " OFFSET %d", params.Offset)
		}
	}

	rows, err := r.DB.QueryContext(ctx, query.String(), params.Args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results, err := scanRows(rows, entryType)
	if err != nil {
		return nil, 0, err
	}

	return results, totalCount, nil
}

func (r *sqliteReader) Count(
	ctx context.Context,
	tableName string,
	params QueryParams,
) (int, error) {
	if _, err := r.entryType(tableName); err != nil {
		return 0, err
	}

	query := "SELECT COUNT(*) FROM " + tableName + whereClause(params)

	var count int

	err := r.DB.QueryRowContext(ctx, query, params.Args...).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *sqliteReader) Close() error {
	return r.DB.Close()
}

func whereClause(params QueryParams) string {
	if params.Where == "" {
		return ""
	}

	return " WHERE " + params.Where
}

// scanRows decodes each row into a new struct of entryType. Columns without a
// matching field are dropped.
func scanRows(rows *sql.Rows, entryType reflect.Type) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fieldIndex := make(map[string]int, entryType.NumField())
	for i := 0; i < entryType.NumField(); i++ {
		fieldIndex[entryType.Field(i).Name] = i
	}

	var results []any

	for rows.Next() {
		entry := reflect.New(entryType)
		targets := make([]any, len(columns))

		for i, col := range columns {
			idx, ok := fieldIndex[col]
			if !ok {
				targets[i] = new(any)
				continue
			}

			targets[i] = entry.Elem().Field(idx).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		results = append(results, entry.Interface())
	}

	return results, rows.Err()
}
