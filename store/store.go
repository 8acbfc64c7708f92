// Package store 将总线快照持久化到 SQLite
//
// 只保存快照形态（事件名与订阅数、历史、选项），不保存 handler。
// 快照以 JSON 编码存储，按 ID 唯一，按 label 分组。
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/uniyakcom/pulse/config"
	"github.com/uniyakcom/pulse/core"
	"github.com/uniyakcom/pulse/marshal"
)

//go:embed schema.sql
var schemaSQL string

// DefaultLabel Checkpoint/Recover 的默认标签
const DefaultLabel = "default"

var (
	// ErrNotFound 快照不存在
	ErrNotFound = errors.New("snapshot not found")
	// ErrDisabled 配置未设置 store.path
	ErrDisabled = errors.New("snapshot store disabled: store.path is empty")
)

// Snapshotter 可生成快照的总线，core.Bus 满足该接口
type Snapshotter interface {
	Snapshot() *core.Snapshot
}

// Restorer 可从快照恢复的总线，core.Bus 满足该接口
type Restorer interface {
	RestoreFromSnapshot(s *core.Snapshot) error
}

// Entry 快照摘要
type Entry struct {
	ID          string
	Label       string
	Version     int
	TakenAt     time.Time
	EventCount  int
	HistorySize int
}

// Store SQLite 快照存储（WAL 模式，单连接写入）
type Store struct {
	db    *sql.DB
	codec marshal.JSON
	label string
}

// Open 打开或创建 path 处的数据库，自动应用 pragma 与表结构（幂等）
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite 只允许单写者
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db, label: DefaultLabel}, nil
}

// FromConfig 在 c.Path 打开存储，Checkpoint/Recover 使用 c.Label
func FromConfig(c config.StoreConfig) (*Store, error) {
	if c.Path == "" {
		return nil, ErrDisabled
	}
	s, err := Open(c.Path)
	if err != nil {
		return nil, err
	}
	if c.Label != "" {
		s.label = c.Label
	}
	return s, nil
}

// Label 默认标签
func (s *Store) Label() string { return s.label }

// Checkpoint 以默认标签保存 bus 的快照，返回快照 ID
func (s *Store) Checkpoint(ctx context.Context, bus Snapshotter) (string, error) {
	return s.Save(ctx, s.label, bus.Snapshot())
}

// Recover 以默认标签下最新的快照恢复 bus；没有快照时返回 ErrNotFound
func (s *Store) Recover(ctx context.Context, bus Restorer) error {
	snap, err := s.Latest(ctx, s.label)
	if err != nil {
		return err
	}
	return bus.RestoreFromSnapshot(snap)
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close 关闭数据库
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save 保存快照并返回其 ID
//
// 快照 ID 为空时分配 UUIDv7、TakenAt 为零值时取当前时间（不修改传入的快照）；
// 同 ID 再次保存覆盖旧内容。
func (s *Store) Save(ctx context.Context, label string, snap *core.Snapshot) (string, error) {
	if snap == nil {
		return "", fmt.Errorf("%w: snapshot must not be nil", core.ErrInvalidArgument)
	}
	cp := *snap
	if cp.ID == "" {
		cp.ID = uuid.Must(uuid.NewV7()).String()
	}
	if cp.TakenAt.IsZero() {
		cp.TakenAt = time.Now().UTC()
	}
	if cp.Version == 0 {
		cp.Version = core.SnapshotVersion
	}
	body, err := s.codec.Marshal(&cp)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, label, version, taken_at, events, history, body)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			version = excluded.version,
			taken_at = excluded.taken_at,
			events = excluded.events,
			history = excluded.history,
			body = excluded.body`,
		cp.ID, label, cp.Version, cp.TakenAt.UnixNano(), len(cp.EventNames()), len(cp.History), body)
	if err != nil {
		return "", fmt.Errorf("failed to save snapshot %s: %w", cp.ID, err)
	}
	return cp.ID, nil
}

// Load 按 ID 读取快照
func (s *Store) Load(ctx context.Context, id string) (*core.Snapshot, error) {
	return s.decodeRow(s.db.QueryRowContext(ctx,
		`SELECT body FROM snapshots WHERE id = ?`, id), id)
}

// Latest label 下最新（taken_at 最大，其次最后保存）的快照
func (s *Store) Latest(ctx context.Context, label string) (*core.Snapshot, error) {
	return s.decodeRow(s.db.QueryRowContext(ctx, `
		SELECT body FROM snapshots WHERE label = ?
		ORDER BY taken_at DESC, seq DESC LIMIT 1`, label), "label "+label)
}

func (s *Store) decodeRow(row *sql.Row, what string) (*core.Snapshot, error) {
	var body []byte
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, what)
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", what, err)
	}
	snap, err := s.codec.Unmarshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", what, err)
	}
	return snap, nil
}

// List label 下的快照摘要，按 taken_at 升序；label 为空时列出全部
func (s *Store) List(ctx context.Context, label string) ([]Entry, error) {
	query := `SELECT id, label, version, taken_at, events, history FROM snapshots`
	var args []any
	if label != "" {
		query += ` WHERE label = ?`
		args = append(args, label)
	}
	query += ` ORDER BY taken_at, seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.ID, &e.Label, &e.Version, &ts, &e.EventCount, &e.HistorySize); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		e.TakenAt = time.Unix(0, ts).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return out, nil
}

// Delete 删除快照，不存在时返回 ErrNotFound
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
