package sheet

import (
	"context"
	"sync"
)

// MemoryStore 进程内的行存储，用于本地开发和测试
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][][]string
	calls  map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string][][]string),
		calls:  make(map[string]int),
	}
}

// Calls 返回某个操作被调用的次数（"read"、"append"、"overwrite"）
func (s *MemoryStore) Calls(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[op]
}

// Rows 返回表的原始行快照（含表头）
func (s *MemoryStore) Rows(table string) [][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRows(s.tables[table])
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}

func (s *MemoryStore) ReadAll(ctx context.Context, table string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.calls["read"]++
	rows := cloneRows(s.tables[table])
	s.mu.Unlock()
	return RowsToRecords(rows), nil
}

func (s *MemoryStore) Append(ctx context.Context, table string, values []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkValues(values); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["append"]++
	s.tables[table] = append(s.tables[table], append([]string(nil), values...))
	return nil
}

func (s *MemoryStore) Overwrite(ctx context.Context, table string, position int, values []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkPosition(position); err != nil {
		return err
	}
	if err := checkValues(values); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["overwrite"]++
	s.setRow(table, position, values)
	return nil
}

// setRow 按 1 基行号写入，超出当前行数时补空行，与远程表格行为一致
func (s *MemoryStore) setRow(table string, position int, values []string) {
	rows := s.tables[table]
	for len(rows) < position {
		rows = append(rows, []string{})
	}
	rows[position-1] = append([]string(nil), values...)
	s.tables[table] = rows
}

func (s *MemoryStore) FindPosition(ctx context.Context, table, column, value string) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["read"]++
	pos, ok := positionOf(s.tables[table], column, value)
	return pos, ok, nil
}

func (s *MemoryStore) WriteHeader(ctx context.Context, table string, columns []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkValues(columns); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRow(table, HeaderPosition, columns)
	return nil
}
