package db

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/suPer8Hu/mindease/internal/booking"
	"github.com/suPer8Hu/mindease/internal/chat"
	"github.com/suPer8Hu/mindease/internal/feedback"
	"github.com/suPer8Hu/mindease/internal/forum"
	"github.com/suPer8Hu/mindease/internal/models"
	"github.com/suPer8Hu/mindease/internal/resource"
	"github.com/suPer8Hu/mindease/internal/screening"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens mysql (production) or sqlite (local runs).
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = gormsqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER=%q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger(os.Stdout),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == "mysql" {
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return gdb, nil
}

// newLogger reports slow queries and real errors. Missing rows are an
// expected outcome of lookups and are not logged.
func newLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Models lists every table the API owns, in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&screening.Screening{},
		&chat.Conversation{},
		&chat.Turn{},
		&booking.Booking{},
		&forum.Post{},
		&forum.Comment{},
		&forum.Like{},
		&resource.Resource{},
		&feedback.Feedback{},
	}
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(Models()...)
}
