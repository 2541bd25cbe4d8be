package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"broker-core/internal/config"
	"broker-core/internal/domain"

	"github.com/shopspring/decimal"
)

const schema = `
CREATE TABLE IF NOT EXISTS account_snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id TEXT NOT NULL,
	currency TEXT NOT NULL,
	cash TEXT NOT NULL,
	equity TEXT NOT NULL,
	buying_power TEXT NOT NULL,
	pattern_day_trader INTEGER NOT NULL DEFAULT 0,
	recorded_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS position_snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol TEXT NOT NULL,
	asset_class TEXT NOT NULL,
	qty TEXT NOT NULL,
	avg_price TEXT NOT NULL,
	market_value TEXT,
	unrealized_pl TEXT,
	recorded_at TIMESTAMP NOT NULL
);
`

// Journal 将归一化后的账户与持仓快照落盘，用于审计与事后核对。
// 历史订单不在记录范围之内。
type Journal struct {
	db *sql.DB
}

// NewSQLite 根据配置初始化 SQLite 快照流水库。
func NewSQLite(cfg config.DatabaseConfig) (*Journal, error) {
	dsn := cfg.Path
	if cfg.InMemory {
		dsn = ":memory:"
	} else {
		if err := ensureDir(filepath.Dir(cfg.Path)); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on", dsn))
	if err != nil {
		return nil, fmt.Errorf("打开 SQLite 数据库失败: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("设置 SQLite WAL 模式失败: %w", err)
	}

	if _, err := conn.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("设置 SQLite 同步级别失败: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("初始化快照表失败: %w", err)
	}

	return &Journal{db: conn}, nil
}

// RecordAccount 记录一条账户快照。
func (j *Journal) RecordAccount(ctx context.Context, acct domain.Account, at time.Time) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO account_snapshots
		 (account_id, currency, cash, equity, buying_power, pattern_day_trader, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		acct.AccountID,
		acct.Currency,
		acct.Cash.String(),
		acct.Equity.String(),
		acct.BuyingPower.String(),
		boolToInt(acct.PatternDayTrader),
		at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("写入账户快照失败: %w", err)
	}
	return nil
}

// RecordPositions 在单个事务内记录一批持仓快照。
func (j *Journal) RecordPositions(ctx context.Context, positions []domain.Position, at time.Time) error {
	if len(positions) == 0 {
		return nil
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启快照事务失败: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO position_snapshots
		 (symbol, asset_class, qty, avg_price, market_value, unrealized_pl, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("准备持仓快照语句失败: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, pos := range positions {
		if _, err := stmt.ExecContext(ctx,
			pos.Symbol,
			string(pos.AssetClass),
			pos.Qty.String(),
			pos.AvgPrice.String(),
			nullableDecimal(pos.MarketValue),
			nullableDecimal(pos.UnrealizedPL),
			at.UTC(),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("写入持仓快照失败: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交快照事务失败: %w", err)
	}
	return nil
}

// DB 返回底层 *sql.DB.
func (j *Journal) DB() *sql.DB {
	return j.db
}

// Close 关闭数据库连接。
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("创建目录 %q 失败: %w", path, err)
	}
	return nil
}

func nullableDecimal(val *decimal.Decimal) interface{} {
	if val == nil {
		return nil
	}
	return val.String()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
