package sheet

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SheetRow 关系库中模拟表格的一行
type SheetRow struct {
	ID       uint           `gorm:"primaryKey;autoIncrement"`
	Sheet    string         `gorm:"size:64;not null;uniqueIndex:idx_sheet_position"`
	Position int            `gorm:"not null;uniqueIndex:idx_sheet_position"`
	Cells    datatypes.JSON `gorm:"not null"`
}

func (SheetRow) TableName() string {
	return "sheet_rows"
}

// DBStore 在没有 Google 账号的自部署环境下，用 MySQL 充当表格服务
type DBStore struct {
	DB *gorm.DB
}

func NewDBStore(db *gorm.DB) (*DBStore, error) {
	if err := db.AutoMigrate(&SheetRow{}); err != nil {
		return nil, err
	}
	return &DBStore{DB: db}, nil
}

func encodeCells(values []string) (datatypes.JSON, error) {
	b, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func decodeCells(raw datatypes.JSON) []string {
	var cells []string
	if len(raw) == 0 {
		return cells
	}
	if err := json.Unmarshal(raw, &cells); err != nil {
		return nil
	}
	return cells
}

func (s *DBStore) rows(ctx context.Context, table string) ([][]string, error) {
	var stored []SheetRow
	err := s.DB.WithContext(ctx).
		Where("sheet = ?", table).
		Order("position ASC").
		Find(&stored).Error
	if err != nil {
		return nil, remoteErr("read", table, err)
	}
	if len(stored) == 0 {
		return nil, nil
	}

	// 行号可能不连续，中间补空行保持 1 基行号语义
	last := stored[len(stored)-1].Position
	rows := make([][]string, last)
	for _, r := range stored {
		if r.Position < 1 {
			continue
		}
		rows[r.Position-1] = decodeCells(r.Cells)
	}
	return rows, nil
}

func (s *DBStore) ReadAll(ctx context.Context, table string) ([]Record, error) {
	rows, err := s.rows(ctx, table)
	if err != nil {
		return nil, err
	}
	return RowsToRecords(rows), nil
}

func (s *DBStore) Append(ctx context.Context, table string, values []string) error {
	if err := checkValues(values); err != nil {
		return err
	}
	cells, err := encodeCells(values)
	if err != nil {
		return err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last SheetRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("sheet = ?", table).
			Order("position DESC").
			Limit(1).
			Take(&last).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&SheetRow{Sheet: table, Position: last.Position + 1, Cells: cells}).Error
	})
	if err != nil {
		return remoteErr("append", table, err)
	}
	return nil
}

func (s *DBStore) Overwrite(ctx context.Context, table string, position int, values []string) error {
	if err := checkPosition(position); err != nil {
		return err
	}
	if err := checkValues(values); err != nil {
		return err
	}
	return s.put(ctx, "overwrite", table, position, values)
}

func (s *DBStore) put(ctx context.Context, op, table string, position int, values []string) error {
	cells, err := encodeCells(values)
	if err != nil {
		return err
	}
	row := SheetRow{Sheet: table, Position: position, Cells: cells}
	err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sheet"}, {Name: "position"}},
		DoUpdates: clause.AssignmentColumns([]string{"cells"}),
	}).Create(&row).Error
	if err != nil {
		return remoteErr(op, table, err)
	}
	return nil
}

func (s *DBStore) FindPosition(ctx context.Context, table, column, value string) (int, bool, error) {
	rows, err := s.rows(ctx, table)
	if err != nil {
		return 0, false, err
	}
	pos, ok := positionOf(rows, column, value)
	return pos, ok, nil
}

func (s *DBStore) WriteHeader(ctx context.Context, table string, columns []string) error {
	if err := checkValues(columns); err != nil {
		return err
	}
	return s.put(ctx, "header", table, HeaderPosition, columns)
}
