package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// RegisterStatic serves the booking page at / and every other unmatched GET
// from dir. It does nothing when dir does not exist.
func RegisterStatic(r *gin.Engine, dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}

	files := http.Dir(dir)
	fileServer := http.FileServer(files)

	r.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(dir, "booking.html"))
	})
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "not found"})
			return
		}
		f, err := files.Open(strings.TrimPrefix(c.Request.URL.Path, "/"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "not found"})
			return
		}
		f.Close()
		fileServer.ServeHTTP(c.Writer, c.Request)
	})
	return true
}
