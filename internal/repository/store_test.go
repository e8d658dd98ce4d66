package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskboard/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type document struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// StoreContractSuite runs the same checks against every Store backend.
type StoreContractSuite struct {
	suite.Suite
	newStore func(t *testing.T) (Store, func(key string, raw []byte))
	store    Store
	corrupt  func(key string, raw []byte)
}

func (suite *StoreContractSuite) SetupTest() {
	suite.store, suite.corrupt = suite.newStore(suite.T())
}

func (suite *StoreContractSuite) TestMissingKey() {
	var doc document
	err := suite.store.Load(context.Background(), "absent", &doc)
	suite.ErrorIs(err, ErrKeyNotFound)
	suite.True(IsMissing(err))
}

func (suite *StoreContractSuite) TestSaveLoadAndOverwrite() {
	ctx := context.Background()
	suite.Require().NoError(suite.store.Save(ctx, "doc", document{Name: "first", Items: []string{"a"}}))
	suite.Require().NoError(suite.store.Save(ctx, "doc", document{Name: "second", Items: []string{"b", "c"}}))

	var doc document
	suite.Require().NoError(suite.store.Load(ctx, "doc", &doc))
	suite.Equal(document{Name: "second", Items: []string{"b", "c"}}, doc)
}

func (suite *StoreContractSuite) TestCorruptValue() {
	suite.corrupt("broken", []byte("{not json"))

	var doc document
	err := suite.store.Load(context.Background(), "broken", &doc)
	suite.ErrorIs(err, ErrCorruptValue)
	suite.True(IsMissing(err))
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &StoreContractSuite{newStore: func(t *testing.T) (Store, func(string, []byte)) {
		s := NewMemoryStore()
		return s, s.Put
	}})
}

func TestGormStore(t *testing.T) {
	suite.Run(t, &StoreContractSuite{newStore: func(t *testing.T) (Store, func(string, []byte)) {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		require.NoError(t, err)
		require.NoError(t, db.AutoMigrate(&models.KVEntry{}))
		t.Cleanup(func() {
			sqlDB, _ := db.DB()
			sqlDB.Close()
		})
		return NewGormStore(db), func(key string, raw []byte) {
			require.NoError(t, db.Create(&models.KVEntry{Key: key, Value: string(raw)}).Error)
		}
	}})
}

func TestRedisStore(t *testing.T) {
	suite.Run(t, &StoreContractSuite{newStore: func(t *testing.T) (Store, func(string, []byte)) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })
		return NewRedisStore(rdb, DefaultRedisPrefix), func(key string, raw []byte) {
			require.NoError(t, mr.Set(DefaultRedisPrefix+key, string(raw)))
		}
	}})
}

func TestRedisStore_UsesPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store := NewRedisStore(rdb, "board:")
	require.NoError(t, store.Save(context.Background(), KeyTeams, []string{"t1"}))

	raw, err := mr.Get("board:teams")
	require.NoError(t, err)
	assert.JSONEq(t, `["t1"]`, raw)
}

func newMockGormStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return NewGormStore(db), mock
}

func TestGormStore_LoadQueriesByKey(t *testing.T) {
	store, mock := newMockGormStore(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "kv_entries" WHERE entry_key = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"entry_key", "payload", "created_at", "updated_at"}).
			AddRow("tasks", `[{"name":"x"}]`, now, now))

	var docs []document
	require.NoError(t, store.Load(context.Background(), "tasks", &docs))
	assert.Equal(t, []document{{Name: "x"}}, docs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_LoadWrapsDriverErrors(t *testing.T) {
	store, mock := newMockGormStore(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT \* FROM "kv_entries"`).WillReturnError(boom)

	var docs []document
	err := store.Load(context.Background(), "tasks", &docs)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsMissing(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_LoadEmptyResult(t *testing.T) {
	store, mock := newMockGormStore(t)
	mock.ExpectQuery(`SELECT \* FROM "kv_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"entry_key", "payload", "created_at", "updated_at"}))

	var docs []document
	assert.ErrorIs(t, store.Load(context.Background(), "tasks", &docs), ErrKeyNotFound)
}
