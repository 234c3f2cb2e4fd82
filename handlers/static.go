package handlers

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// RegisterStatic serves files below root for every path no route claims.
// Directories resolve to their index.html; anything else is a JSON 404.
func RegisterStatic(r *gin.Engine, root string) {
	fsys := gin.Dir(root, false)
	files := http.FileServer(fsys)

	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if !exists(fsys, path.Clean("/"+c.Request.URL.Path)) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})
}

func exists(fsys http.FileSystem, name string) bool {
	f, err := fsys.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return false
	}
	if !st.IsDir() {
		return true
	}
	idx, err := fsys.Open(path.Join(name, "index.html"))
	if err != nil {
		return false
	}
	idx.Close()
	return true
}
