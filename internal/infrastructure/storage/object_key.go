package storage

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var now = time.Now

// ObjectKey builds folder/yyyy/mm/<uuid><ext>. The client filename only
// contributes its lowercased extension.
func ObjectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(filename, "\\", "/")))
	if len(ext) > 10 || strings.ContainsAny(ext, " /?#%") {
		ext = ""
	}
	t := now().UTC()
	return path.Join(strings.Trim(folder, "/"), t.Format("2006"), t.Format("01"), uuid.NewString()+ext)
}

func contentTypeOr(ct string) string {
	if strings.TrimSpace(ct) == "" {
		return "application/octet-stream"
	}
	return ct
}
