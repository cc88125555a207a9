// Package web holds the page served by the monitor.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"runtime"
	"strings"
)

//go:embed dist/*
var staticAssets embed.FS

// DevEnvVar switches the monitor to serve the page from the source tree.
const DevEnvVar = "OSSIM_MONITOR_DEV"

// GetAssets returns the static assets.
func GetAssets() http.FileSystem {
	if !isDevelopmentMode() {
		subFS, err := fs.Sub(staticAssets, "dist")
		if err != nil {
			panic(err)
		}

		return http.FS(subFS)
	}

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("error getting path")
	}

	assetPath := path.Join(path.Dir(file), "dist")
	fmt.Fprintf(os.Stderr, "Serving monitor page from %s\n", assetPath)

	return http.Dir(assetPath)
}

// Handler serves the static assets.
func Handler() http.Handler {
	return http.FileServer(GetAssets())
}

func isDevelopmentMode() bool {
	value, exist := os.LookupEnv(DevEnvVar)
	if !exist {
		return false
	}

	return strings.EqualFold(value, "true") || value == "1"
}
