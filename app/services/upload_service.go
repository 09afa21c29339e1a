package services

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/furnivision/config"
	"github.com/shashiranjanraj/furnivision/pkg/bind"
	"github.com/shashiranjanraj/furnivision/pkg/logger"
	"github.com/shashiranjanraj/furnivision/pkg/storage"
)

// Upload is a stored vendor asset.
type Upload struct {
	URL         string `json:"url"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// UploadService checks vendor asset files and writes the accepted ones to
// the storage disk.
type UploadService struct {
	disk     func() storage.Disk
	maxModel int64
	maxImage int64
}

func NewUploadService() *UploadService {
	return &UploadService{
		disk:     storage.Default,
		maxModel: config.MaxModelBytes(),
		maxImage: config.MaxImageBytes(),
	}
}

// WithDisk points the service at d.
func (s *UploadService) WithDisk(d storage.Disk) *UploadService {
	s.disk = func() storage.Disk { return d }
	return s
}

// MaxModelBytes and MaxImageBytes are the accepted file sizes.
func (s *UploadService) MaxModelBytes() int64 { return s.maxModel }
func (s *UploadService) MaxImageBytes() int64 { return s.maxImage }

// StoreModel accepts a self-contained binary glTF.
func (s *UploadService) StoreModel(ctx context.Context, f *bind.File) (Upload, error) {
	if err := CheckModel(f.Name, f.Size, s.maxModel); err != nil {
		return Upload{}, err
	}
	return s.put(ctx, "products/models", ".glb", "model/gltf-binary", f.Data)
}

// StoreImage accepts any image format. The stored extension follows the
// sniffed content, never the client's file name.
func (s *UploadService) StoreImage(ctx context.Context, f *bind.File) (Upload, error) {
	if f.Size > s.maxImage {
		return Upload{}, fail(ErrUploadTooBig, MsgImageTooBig, nil)
	}
	contentType := http.DetectContentType(f.Data)
	if !strings.HasPrefix(contentType, "image/") {
		return Upload{}, fail(ErrInvalidUpload, MsgNotImage, nil)
	}
	return s.put(ctx, "products/images", imageExt(contentType), contentType, f.Data)
}

var imageExts = map[string]string{
	"image/png":    ".png",
	"image/jpeg":   ".jpg",
	"image/gif":    ".gif",
	"image/webp":   ".webp",
	"image/bmp":    ".bmp",
	"image/x-icon": ".ico",
	"image/avif":   ".avif",
}

func imageExt(contentType string) string {
	if ext, ok := imageExts[contentType]; ok {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	return ".img"
}

// CheckModel applies the 3D model rules in order: glTF is refused first,
// then anything that is not .glb, then oversized files.
func CheckModel(name string, size, limit int64) error {
	if err := CheckModelName(name); err != nil {
		return err
	}
	if size > limit {
		return fail(ErrUploadTooBig, MsgModelTooBig, nil)
	}
	return nil
}

// CheckModelName is the format half of CheckModel. Upload handlers run it
// on the multipart file name before reading the body.
func CheckModelName(name string) error {
	switch strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".") {
	case "gltf":
		return fail(ErrInvalidUpload, MsgGLTF, nil)
	case "glb":
		return nil
	}
	return fail(ErrInvalidUpload, MsgNotGLB, nil)
}

func (s *UploadService) put(ctx context.Context, dir, ext, contentType string, data []byte) (Upload, error) {
	p := fmt.Sprintf("%s/%s%s", dir, uuid.NewString(), ext)
	disk := s.disk()
	if err := disk.Put(ctx, p, data, contentType); err != nil {
		logger.WithCtx(ctx).Error("upload: write failed", "path", p, "error", err)
		return Upload{}, fail(ErrStorage, MsgStorageFull, err)
	}
	logger.WithCtx(ctx).Info("upload: stored", "path", p, "bytes", len(data))
	return Upload{URL: disk.URL(p), Path: p, Size: int64(len(data)), ContentType: contentType}, nil
}
