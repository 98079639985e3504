package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padraicbc/regattaapi/config"
	"github.com/padraicbc/regattaapi/models"
)

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestCreateTables_Idempotent(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{DBDriver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "regatta.db")}

	for i := 0; i < 2; i++ {
		bdb, err := Open(ctx, cfg)
		require.NoError(t, err)
		require.NoError(t, CreateTables(ctx, bdb), "run %d", i)
		require.NoError(t, bdb.Close())
	}

	bdb, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer bdb.Close()

	rg := &models.Regatta{Name: "Spring Cup", Status: models.StatusPreparation}
	_, err = bdb.NewInsert().Model(rg).Exec(ctx)
	require.NoError(t, err)
	assert.NotZero(t, rg.ID)

	n, err := bdb.NewSelect().Model((*models.Regatta)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCreateTables_ResultsUniquePerRaceAndBoat(t *testing.T) {
	ctx := context.Background()
	bdb, err := Open(ctx, &config.Config{DBDriver: config.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer bdb.Close()
	require.NoError(t, CreateTables(ctx, bdb))

	_, err = bdb.NewInsert().Model(&models.Result{RaceID: 1, BoatID: 1, Placement: 1}).Exec(ctx)
	require.NoError(t, err)
	_, err = bdb.NewInsert().Model(&models.Result{RaceID: 1, BoatID: 1, Placement: 2}).Exec(ctx)
	assert.Error(t, err)
}
