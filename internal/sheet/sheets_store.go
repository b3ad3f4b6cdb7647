package sheet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	valueInputRaw  = "RAW"
	insertRows     = "INSERT_ROWS"
	defaultTimeout = 10 * time.Second
)

// SheetsOptions Google Sheets 连接参数
type SheetsOptions struct {
	SpreadsheetID   string
	CredentialsFile string
	CredentialsJSON string
	Timeout         time.Duration
	ClientOptions   []option.ClientOption
}

// SheetsStore 基于 Google Sheets v4 的行存储
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	timeout       time.Duration
}

// clientOptions 根据凭据配置生成客户端选项，均为空时使用默认凭据（ADC）
func (o SheetsOptions) clientOptions() []option.ClientOption {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	creds := strings.TrimSpace(o.CredentialsJSON)
	if creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	} else if f := strings.TrimSpace(o.CredentialsFile); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}
	return append(opts, o.ClientOptions...)
}

func NewSheetsStore(ctx context.Context, o SheetsOptions) (*SheetsStore, error) {
	if strings.TrimSpace(o.SpreadsheetID) == "" {
		return nil, fmt.Errorf("missing spreadsheet id")
	}
	svc, err := sheets.NewService(ctx, o.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &SheetsStore{svc: svc, spreadsheetID: o.SpreadsheetID, timeout: timeout}, nil
}

func fullRange(table string) string {
	return fmt.Sprintf("%s!A:%s", table, ColumnLetter(MaxColumns-1))
}

func rowRange(table string, position int) string {
	last := ColumnLetter(MaxColumns - 1)
	return fmt.Sprintf("%s!A%d:%s%d", table, position, last, position)
}

func toCells(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}

// toRows 单元格统一转成文本
func toRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		out := make([]string, len(row))
		for j, cell := range row {
			out[j] = cast.ToString(cell)
		}
		rows[i] = out
	}
	return rows
}

func (s *SheetsStore) readRows(ctx context.Context, table string) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, fullRange(table)).Context(ctx).Do()
	if err != nil {
		return nil, remoteErr("read", table, err)
	}
	return toRows(resp.Values), nil
}

func (s *SheetsStore) ReadAll(ctx context.Context, table string) ([]Record, error) {
	rows, err := s.readRows(ctx, table)
	if err != nil {
		return nil, err
	}
	return RowsToRecords(rows), nil
}

func (s *SheetsStore) Append(ctx context.Context, table string, values []string) error {
	if err := checkValues(values); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(values)}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, fullRange(table), vr).
		ValueInputOption(valueInputRaw).
		InsertDataOption(insertRows).
		Context(ctx).
		Do()
	if err != nil {
		return remoteErr("append", table, err)
	}
	return nil
}

func (s *SheetsStore) Overwrite(ctx context.Context, table string, position int, values []string) error {
	if err := checkPosition(position); err != nil {
		return err
	}
	if err := checkValues(values); err != nil {
		return err
	}
	return s.update(ctx, table, position, values)
}

func (s *SheetsStore) update(ctx context.Context, table string, position int, values []string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(values)}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rowRange(table, position), vr).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return remoteErr("overwrite", table, err)
	}
	return nil
}

func (s *SheetsStore) FindPosition(ctx context.Context, table, column, value string) (int, bool, error) {
	rows, err := s.readRows(ctx, table)
	if err != nil {
		return 0, false, err
	}
	pos, ok := positionOf(rows, column, value)
	return pos, ok, nil
}

// WriteHeader 写入第一行表头，已有数据行不受影响
func (s *SheetsStore) WriteHeader(ctx context.Context, table string, columns []string) error {
	if err := checkValues(columns); err != nil {
		return err
	}
	return s.update(ctx, table, HeaderPosition, columns)
}
