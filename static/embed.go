package staticfiles

import (
	"embed"
	"io/fs"
)

//go:embed css/* js/* sw.js
var embedded embed.FS

func EmbeddedFS() fs.FS {
	return embedded
}

// ServiceWorker returns the worker script, served from the site root so its
// scope covers the whole app.
func ServiceWorker() ([]byte, error) {
	return embedded.ReadFile("sw.js")
}
