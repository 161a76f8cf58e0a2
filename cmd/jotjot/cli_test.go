package main

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jotjot/internal/config"
	"jotjot/internal/storage"
)

func TestPlainToHTML(t *testing.T) {
	assert.Equal(t, "<p>one</p><p>two &amp; three</p>", plainToHTML("one\ntwo & three"))
	assert.Equal(t, "", plainToHTML(""))
}

func TestReadInput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>hi</p>"), 0o644))

	content, err := readInput([]string{path})
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", content)

	_, err = readInput([]string{filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestServerFallsBackToBaseURL(t *testing.T) {
	cfg.BaseURL = "http://localhost:3000"
	serverURL = ""
	assert.Equal(t, "http://localhost:3000", server())

	serverURL = "https://jot.example"
	defer func() { serverURL = "" }()
	assert.Equal(t, "https://jot.example", server())
}

func TestRunServer_ClosesStoreOnError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	dbPath := t.TempDir()
	saved := cfg
	defer func() { cfg = saved }()
	cfg = config.Config{
		BaseURL:          "http://localhost:3000",
		ServerAddr:       busy.Addr().String(),
		StoreDriver:      config.StoreBadger,
		BadgerDBPath:     dbPath,
		BadgerGCInterval: time.Minute,
		PreviewRenderer:  config.RendererRaster,
		RateLimitRPS:     1,
		RateLimitBurst:   1,
	}
	log.SetOutput(io.Discard)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	assert.Error(t, runServer(ctx, stop), "address already in use")

	// Badger locks its directory until closed.
	store, err := storage.NewBadgerStore(dbPath, log)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}
