package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/config"
)

// exerciseKV runs the contract every driver must satisfy.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, kv.Ping(ctx))

	_, err := kv.Get(ctx, "ledger_state")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Put(ctx, "ledger_state", []byte(`{"v":1}`)))
	got, err := kv.Get(ctx, "ledger_state")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(got))

	require.NoError(t, kv.Put(ctx, "ledger_state", []byte(`{"v":2}`)))
	got, err = kv.Get(ctx, "ledger_state")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got))

	_, err = kv.Get(ctx, "other")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	m := NewMemory()
	buf := []byte(`{"v":1}`)
	require.NoError(t, m.Put(context.Background(), "k", buf))
	buf[0] = 'X'
	got, _ := m.Get(context.Background(), "k")
	assert.Equal(t, `{"v":1}`, string(got))
}

func TestFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	f, err := NewFile(dir)
	require.NoError(t, err)
	exerciseKV(t, f)

	_, err = os.Stat(filepath.Join(dir, "ledger_state.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "ledger_state.json.tmp"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "temp file must be renamed away")
}

func TestFile_RejectsPathKeys(t *testing.T) {
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, f.Put(context.Background(), "../escape", []byte("{}")))
	_, err = f.Get(context.Background(), "a/b")
	assert.Error(t, err)
}

func TestFile_EmptyFileIsNotFound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ledger_state.json"), nil, 0o644))
	f, err := NewFile(dir)
	require.NoError(t, err)
	_, err = f.Get(context.Background(), "ledger_state")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "ledger.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer s.Close()
	exerciseKV(t, s)
}

type fakeRow struct {
	value []byte
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.value
	return nil
}

type fakePG struct {
	rows    map[string][]byte
	execErr error
	pingErr error
	execs   []string
}

func (f *fakePG) Ping(context.Context) error { return f.pingErr }

func (f *fakePG) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	if strings.Contains(sql, "INSERT INTO kv_store") {
		f.rows[args[0].(string)] = args[1].([]byte)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakePG) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	v, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{value: v}
}

func TestPostgres(t *testing.T) {
	fake := &fakePG{rows: map[string][]byte{}}
	closed := false
	pg := NewPostgres(fake, func() { closed = true })

	require.NoError(t, pg.EnsureSchema(context.Background()))
	assert.Contains(t, fake.execs[0], "CREATE TABLE IF NOT EXISTS kv_store")
	exerciseKV(t, pg)
	require.NoError(t, pg.Close())
	assert.True(t, closed)
}

func TestPostgres_ExecErrorIsWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	pg := NewPostgres(&fakePG{rows: map[string][]byte{}, execErr: boom}, nil)
	err := pg.Put(context.Background(), "ledger_state", []byte("{}"))
	assert.ErrorIs(t, err, boom)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	kv, err := Open(ctx, &config.Config{Storage: config.StorageConfig{Driver: "memory"}})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, kv)

	kv, err = Open(ctx, &config.Config{Storage: config.StorageConfig{Driver: "file", Path: t.TempDir()}})
	require.NoError(t, err)
	assert.IsType(t, &File{}, kv)

	_, err = Open(ctx, &config.Config{Storage: config.StorageConfig{Driver: "etcd"}})
	assert.Error(t, err)
}

func TestPingReportsUnreachableStore(t *testing.T) {
	down := errors.New("connection refused")
	pg := NewPostgres(&fakePG{rows: map[string][]byte{}, pingErr: down}, nil)
	assert.ErrorIs(t, pg.Ping(context.Background()), down)

	dir := filepath.Join(t.TempDir(), "data")
	f, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))
	assert.Error(t, f.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewMemory().Ping(ctx), context.Canceled)
}
