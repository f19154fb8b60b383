package storage_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go-hiring-pipeline/internal/domain"
	"go-hiring-pipeline/internal/repository/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBucket struct {
	key         string
	contentType string
	data        []byte
	err         error
}

func (b *memBucket) Put(_ context.Context, key, contentType string, data []byte) error {
	b.key, b.contentType, b.data = key, contentType, data
	return b.err
}

func TestArchiveKey(t *testing.T) {
	at := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("WIB", 7*3600))

	tests := []struct {
		name, file, want string
	}{
		{"plain", "candidates.csv", "imports/2024-03-09/id1-candidates.csv"},
		{"unix path stripped", "../../etc/passwd", "imports/2024-03-09/id1-passwd"},
		{"windows path stripped", `C:\Users\rita\march list.csv`, "imports/2024-03-09/id1-march_list.csv"},
		{"empty name", "", "imports/2024-03-09/id1-upload.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, storage.ArchiveKey(at, "id1", tt.file))
		})
	}
}

func TestImportArchiver(t *testing.T) {
	t.Run("stores the upload", func(t *testing.T) {
		bucket := &memBucket{}
		key, err := storage.NewImportArchiver(bucket).Archive(context.Background(), domain.ImportFile{
			Name: "candidates.csv",
			Data: []byte("name,email,role"),
		})

		require.NoError(t, err)
		assert.Equal(t, key, bucket.key)
		assert.True(t, strings.HasPrefix(key, "imports/"))
		assert.True(t, strings.HasSuffix(key, "-candidates.csv"))
		assert.Equal(t, "text/csv", bucket.contentType)
		assert.Equal(t, []byte("name,email,role"), bucket.data)
	})

	t.Run("bucket errors are returned", func(t *testing.T) {
		bucket := &memBucket{err: errors.New("access denied")}
		key, err := storage.NewImportArchiver(bucket).Archive(context.Background(), domain.ImportFile{Name: "a.csv"})
		assert.Error(t, err)
		assert.Empty(t, key)
	})
}
