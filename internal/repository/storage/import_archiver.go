package storage

import (
	"context"
	"path"
	"strings"
	"time"

	"go-hiring-pipeline/internal/domain"

	"github.com/rs/xid"
)

// ObjectPutter is the write half of an object store bucket.
type ObjectPutter interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
}

type importArchiver struct {
	bucket ObjectPutter
	now    func() time.Time
}

// NewImportArchiver keeps a copy of every uploaded import file.
func NewImportArchiver(bucket ObjectPutter) domain.ImportArchiver {
	return &importArchiver{bucket: bucket, now: time.Now}
}

func (a *importArchiver) Archive(ctx context.Context, file domain.ImportFile) (string, error) {
	now := a.now()
	// xids sort by creation time within a day prefix
	key := ArchiveKey(now, xid.NewWithTime(now).String(), file.Name)
	contentType := file.ContentType
	if contentType == "" {
		contentType = "text/csv"
	}
	if err := a.bucket.Put(ctx, key, contentType, file.Data); err != nil {
		return "", err
	}
	return key, nil
}

// ArchiveKey builds imports/<yyyy-mm-dd>/<id>-<base name>.
func ArchiveKey(at time.Time, id, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload.csv"
	}
	name = strings.ReplaceAll(name, " ", "_")
	return "imports/" + at.UTC().Format("2006-01-02") + "/" + id + "-" + name
}
