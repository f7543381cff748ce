package repository

import (
	"strings"
	"testing"
	"time"

	"golang-news-insight/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newDryRunDB renders postgres SQL without opening a connection.
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=test dbname=test sslmode=disable"}), &gorm.Config{
		DryRun:                 true,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)
	return db
}

// conflictUpdates returns the SET list of the ON CONFLICT clause.
func conflictUpdates(t *testing.T, sql string) string {
	t.Helper()
	_, set, found := strings.Cut(sql, "DO UPDATE SET ")
	require.True(t, found, sql)
	set, _, _ = strings.Cut(set, " RETURNING")
	return set
}

func TestInsertPlain_KeepsStoredAnalysis(t *testing.T) {
	res := insertPlain(newDryRunDB(t), []entity.Record{
		{ExternalItemID: strPtr("a"), Source: "wire", Content: "body", CreatedAt: time.Now()},
	})
	require.NoError(t, res.Error)

	sql := res.Statement.SQL.String()
	assert.Contains(t, sql, `ON CONFLICT ("external_item_id") DO UPDATE SET `)
	assert.Equal(t,
		`"source"="excluded"."source","url"="excluded"."url","content"="excluded"."content","created_at"="excluded"."created_at"`,
		conflictUpdates(t, sql))
}

func TestInsertWithAnalysis_OverwritesAnalysis(t *testing.T) {
	now := time.Now()
	res := insertWithAnalysis(newDryRunDB(t), []entity.Record{
		{ExternalItemID: strPtr("a"), Source: "wire", Content: "body", CreatedAt: now, Summary: strPtr("s"), AnalyzedAt: &now},
	})
	require.NoError(t, res.Error)

	set := conflictUpdates(t, res.Statement.SQL.String())
	for _, col := range append(append([]string{}, ingestColumns...), analysisColumns...) {
		assert.Contains(t, set, `"`+col+`"="excluded"."`+col+`"`)
	}
}
