package postgres

import (
	"io/fs"
	"testing/fstest"
)

type testMigrations map[string]string

func (m testMigrations) FS() fs.FS {
	out := fstest.MapFS{}
	for name, body := range m {
		out[name] = &fstest.MapFile{Data: []byte(body)}
	}
	return out
}
