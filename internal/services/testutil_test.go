package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"commentkit/internal/config"
	"commentkit/internal/db"
	"commentkit/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a per-test in-memory sqlite database. The shared
// cache keeps every pooled connection on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	return conn
}

func testConfig() *config.Config {
	return config.Default()
}

var testOwner = models.Owner{Type: "posts", ID: 1}

func createUser(t *testing.T, conn *gorm.DB, name string) *models.User {
	t.Helper()

	user := models.User{Name: name, Email: name + "@example.com"}
	require.NoError(t, conn.Create(&user).Error)
	return &user
}

func createComment(t *testing.T, conn *gorm.DB, status models.CommentStatus, mutate ...func(*models.Comment)) *models.Comment {
	t.Helper()

	comment := models.Comment{
		CommentableType: testOwner.Type,
		CommentableID:   testOwner.ID,
		GuestName:       "guest",
		GuestEmail:      "guest@example.com",
		Body:            "hello",
		Status:          status,
	}
	for _, fn := range mutate {
		fn(&comment)
	}
	require.NoError(t, conn.Create(&comment).Error)
	return &comment
}

func backdate(conn *gorm.DB, comment *models.Comment, by time.Duration) {
	conn.Model(comment).UpdateColumn("created_at", time.Now().Add(-by))
}
