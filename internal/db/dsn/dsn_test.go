package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/castboard/castboard/internal/config"
)

func TestCreate(t *testing.T) {
	db := config.DB{
		Host:     "db.local",
		Port:     3306,
		User:     "cb",
		Password: "secret",
		Name:     "castboard",
		Extras:   "parseTime=True",
	}

	tests := []struct {
		engine string
		want   string
	}{
		{"", "cb:secret@tcp(db.local:3306)/castboard?parseTime=True"},
		{EngineMySQL, "cb:secret@tcp(db.local:3306)/castboard?parseTime=True"},
		{EnginePostgres, "host=db.local port=3306 user=cb password=secret dbname=castboard parseTime=True"},
		{EngineSQLite, "castboard"},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			d := db
			d.GormEngine = tt.engine
			assert.Equal(t, tt.want, Create(&config.Config{DB: d}))
		})
	}
}

func TestCreateSQLiteInMemory(t *testing.T) {
	cfg := &config.Config{DB: config.DB{GormEngine: EngineSQLite}}
	assert.Equal(t, ":memory:", Create(cfg))
}

func TestURI(t *testing.T) {
	cfg := &config.Config{DB: config.DB{
		GormEngine: EnginePostgres,
		Host:       "pg",
		Port:       5432,
		User:       "cb",
		Password:   "p@ss",
		Name:       "castboard",
		Extras:     "sslmode=disable",
	}}

	assert.Equal(t, "postgres://cb:p%40ss@pg:5432/castboard?sslmode=disable", URI(cfg))
}

func TestDialector(t *testing.T) {
	for _, engine := range []string{EngineMySQL, EnginePostgres, EngineSQLite} {
		d := Dialector(&config.Config{DB: config.DB{GormEngine: engine}})
		assert.Equal(t, engine, d.Name())
	}
}
