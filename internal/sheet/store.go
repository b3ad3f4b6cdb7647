package sheet

import (
	"context"
	"errors"
	"fmt"
)

// MaxColumns 表格最多使用 A:Z 共 26 列
const MaxColumns = 26

// HeaderPosition 第一行固定为表头
const HeaderPosition = 1

var (
	ErrRemoteUnavailable = errors.New("row store unavailable")
	ErrInvalidPosition   = errors.New("invalid row position")
	ErrTooManyColumns    = errors.New("too many columns")
)

// Record 一行数据，列名 -> 单元格文本
type Record map[string]string

// Get 读取列值，列不存在时返回空字符串
func (r Record) Get(column string) string {
	if r == nil {
		return ""
	}
	return r[column]
}

// Store 远程表格存储的最小操作集合。
// 所有方法都可能阻塞在网络 I/O 上，调用方必须传入可取消的 ctx。
type Store interface {
	ReadAll(ctx context.Context, table string) ([]Record, error)
	Append(ctx context.Context, table string, values []string) error
	Overwrite(ctx context.Context, table string, position int, values []string) error
	FindPosition(ctx context.Context, table, column, value string) (int, bool, error)
	WriteHeader(ctx context.Context, table string, columns []string) error
}

// RowsToRecords 把原始行（第一行是表头）映射为记录，缺失的尾部单元格视为空字符串
func RowsToRecords(rows [][]string) []Record {
	if len(rows) < 2 {
		return []Record{}
	}
	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(row) {
				rec[name] = row[i]
			} else {
				rec[name] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

// positionOf 在原始行中线性查找列值，返回 1 基行号
func positionOf(rows [][]string, column, value string) (int, bool) {
	if len(rows) == 0 {
		return 0, false
	}
	idx := -1
	for i, name := range rows[0] {
		if name == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, false
	}
	for i := 1; i < len(rows); i++ {
		if idx < len(rows[i]) && rows[i][idx] == value {
			return i + 1, true
		}
	}
	return 0, false
}

func checkValues(values []string) error {
	if len(values) > MaxColumns {
		return fmt.Errorf("%w: %d > %d", ErrTooManyColumns, len(values), MaxColumns)
	}
	return nil
}

func checkPosition(position int) error {
	if position <= HeaderPosition {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, position)
	}
	return nil
}

func remoteErr(op, table string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %s %s: %v", ErrRemoteUnavailable, op, table, err)
}

// ColumnLetter 把 0 基列号转换为表格列字母（仅支持 A-Z）
func ColumnLetter(i int) string {
	if i < 0 || i >= MaxColumns {
		return ""
	}
	return string(rune('A' + i))
}
