package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	m := NewMockDB(t)
	require.NotNil(t, m.DB)

	m.Mock.ExpectExec("DELETE FROM tiles").WillReturnError(assert.AnError)
	err := m.DB.Exec("DELETE FROM tiles").Error
	assert.ErrorIs(t, err, assert.AnError)
	m.ExpectationsWereMet(t)
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("customer"), NewTestUUID("customer"))
	assert.NotEqual(t, NewTestUUID("customer"), NewTestUUID("tile"))
}

func TestContextWithTimeout(t *testing.T) {
	ctx := ContextWithTimeout(t, time.Minute)
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)
}

func TestRequireEventually(t *testing.T) {
	calls := 0
	RequireEventually(t, func() bool {
		calls++
		return calls == 3
	}, time.Second, time.Millisecond)
	assert.Equal(t, 3, calls)
}

func TestDoJSONAndDecode(t *testing.T) {
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		var body map[string]string
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"auth": c.GetHeader("Authorization"), "name": body["name"]}})
	})
	engine.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": gin.H{"code": "NOT_FOUND", "message": "Tile not found"}})
	})

	w := DoJSON(t, engine, http.MethodPost, "/echo", map[string]string{"name": "2x2"}, "abc")
	env := Decode[map[string]string](t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "Bearer abc", env.Data["auth"])
	assert.Equal(t, "2x2", env.Data["name"])

	AssertErrorCode(t, DoJSON(t, engine, http.MethodGet, "/missing", nil, ""), http.StatusNotFound, "NOT_FOUND")
}

func TestFixtures_Deterministic(t *testing.T) {
	a, b := NewFixtures(42), NewFixtures(42)
	assert.Equal(t, a.Customer(), b.Customer())

	c := NewFixtures(7).Customer()
	assert.Len(t, c["phone"], 10)
	assert.NotEmpty(t, c["name"])
	assert.Contains(t, tileSizes, NewFixtures(7).TileSize())

	item := NewFixtures(3).LineItem("2x2")
	assert.Equal(t, "2x2", item["size"])
	assert.GreaterOrEqual(t, item["box_qty"], 1)
}
