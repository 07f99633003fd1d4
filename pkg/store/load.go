package store

import (
	"path/filepath"
	"strings"

	"network_analysis/pkg/graph"
)

// IsSQLitePath reports whether path names a SQLite export rather than a
// binary snapshot.
func IsSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// LoadGraph reads a graph from either a binary snapshot or a SQLite export,
// chosen by file extension.
func LoadGraph(path string) (*graph.Graph, error) {
	if IsSQLitePath(path) {
		return Load(path)
	}
	return graph.ReadBinary(path)
}
