package models

import (
	"testing"

	"gorm.io/gorm/logger"
)

func TestOpenDBDrivers(t *testing.T) {
	db, err := OpenDB("sqlite", "file:models_open_test?mode=memory&cache=shared", logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	for _, model := range AllModels() {
		if !db.Migrator().HasTable(model) {
			t.Fatalf("table for %T not created", model)
		}
	}

	if _, err := OpenDB("oracle", "", logger.Silent); err == nil {
		t.Fatalf("unsupported driver should fail")
	}
}

func TestDialectorFor(t *testing.T) {
	cases := map[string]string{
		"":           "sqlite",
		"SQLite":     "sqlite",
		"postgresql": "postgres",
		"mysql":      "mysql",
	}
	for driver, want := range cases {
		dialector, err := dialectorFor(driver, "")
		if err != nil {
			t.Fatalf("driver %q failed: %v", driver, err)
		}
		if got := dialector.Name(); got != want {
			t.Fatalf("driver %q want dialect %s got %s", driver, want, got)
		}
	}
}
