package repositories

import (
	"bytes"
	"context"
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ImageRepository stores uploaded and generated images in a GridFS bucket.
type ImageRepository struct {
	bucket *gridfs.Bucket
}

func NewImageRepository(bucket *gridfs.Bucket) *ImageRepository {
	return &ImageRepository{bucket: bucket}
}

// StoredImage is the metadata kept next to each file.
type StoredImage struct {
	ID          primitive.ObjectID
	Filename    string
	ContentType string
	Size        int64
}

// Save uploads data under filename and returns the file id.
func (r *ImageRepository) Save(ctx context.Context, filename, contentType string, data io.Reader) (primitive.ObjectID, error) {
	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": contentType})
	stream, err := r.bucket.OpenUploadStream(filename, opts)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}
	if _, err := io.Copy(stream, data); err != nil {
		_ = stream.Abort()
		return primitive.NilObjectID, err
	}
	if err := stream.Close(); err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := stream.FileID.(primitive.ObjectID)
	return id, nil
}

// SaveBytes is Save for in-memory payloads such as generated images.
func (r *ImageRepository) SaveBytes(ctx context.Context, filename, contentType string, data []byte) (primitive.ObjectID, error) {
	return r.Save(ctx, filename, contentType, bytes.NewReader(data))
}

// Open returns a reader over the stored file plus its metadata.
// The caller must close the returned stream.
func (r *ImageRepository) Open(ctx context.Context, id primitive.ObjectID) (*gridfs.DownloadStream, StoredImage, error) {
	stream, err := r.bucket.OpenDownloadStream(id)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, StoredImage{}, ErrNotFound
		}
		return nil, StoredImage{}, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}

	file := stream.GetFile()
	info := StoredImage{ID: id, Filename: file.Name, Size: file.Length, ContentType: "application/octet-stream"}
	var meta struct {
		ContentType string `bson:"content_type"`
	}
	if len(file.Metadata) > 0 && bson.Unmarshal(file.Metadata, &meta) == nil && meta.ContentType != "" {
		info.ContentType = meta.ContentType
	}
	return stream, info, nil
}
