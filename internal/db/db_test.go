package db

import (
	"bytes"
	"errors"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/suPer8Hu/mindease/internal/models"
	"gorm.io/gorm"
)

func TestConnectSQLiteAndMigrate(t *testing.T) {
	gdb, err := Connect("sqlite", "file:db_migrate?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"users", "screenings", "conversations", "conversation_turns",
		"bookings", "forum_posts", "forum_comments", "forum_likes", "resources", "feedback"} {
		if !gdb.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
}

func TestConnectUnknownDriver(t *testing.T) {
	if _, err := Connect("postgres", "x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoggerSkipsRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	gdb, err := gorm.Open(gormsqlite.Open("file:db_logger?mode=memory&cache=shared"), &gorm.Config{
		Logger: newLogger(&buf),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := gdb.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	var u models.User
	if err := gdb.First(&u, 42).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("unexpected log output: %q", buf.String())
	}

	if err := gdb.Exec("SELECT * FROM no_such_table").Error; err == nil {
		t.Fatal("expected error from missing table")
	}
	if buf.Len() == 0 {
		t.Fatal("real errors should still be logged")
	}
}
