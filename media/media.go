// Package media validates uploaded images and hands them to the image host.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"friendzone/apperr"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gabriel-vasile/mimetype"
)

const MaxImageBytes = 2 << 20

// Upload folders under the configured root.
const (
	FolderAvatars = "avatars"
	FolderPosts   = "posts"
)

var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReadImage reads at most MaxImageBytes from r and checks that the file
// name and the content are both jpeg or png.
func ReadImage(r io.Reader, filename string) (*Image, error) {
	if !allowedExt[strings.ToLower(filepath.Ext(filename))] {
		return nil, apperr.Validation("Only .jpg, .jpeg and .png images are allowed")
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, apperr.Validation("Could not read image")
	}
	if len(data) > MaxImageBytes {
		return nil, apperr.Validation("Image must be at most 2 MB")
	}
	if len(data) == 0 {
		return nil, apperr.Validation("Image is empty")
	}
	mt := mimetype.Detect(data)
	if !mt.Is("image/jpeg") && !mt.Is("image/png") {
		return nil, apperr.Validation("Only .jpg, .jpeg and .png images are allowed")
	}
	return &Image{Filename: filename, ContentType: mt.String(), Data: data}, nil
}

// FromFileHeader opens a multipart file. A nil header yields a nil image.
func FromFileHeader(fh *multipart.FileHeader) (*Image, error) {
	if fh == nil {
		return nil, nil
	}
	if fh.Size > MaxImageBytes {
		return nil, apperr.Validation("Image must be at most 2 MB")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Validation("Could not read image")
	}
	defer f.Close()
	return ReadImage(f, fh.Filename)
}

type Uploader interface {
	// Upload stores img under folder and returns its public URL.
	Upload(ctx context.Context, img *Image, folder string) (string, error)
}

type CloudinaryUploader struct {
	cld  *cloudinary.Cloudinary
	root string
}

func NewCloudinaryUploader(cloudinaryURL, root string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	return &CloudinaryUploader{cld: cld, root: root}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, img *Image, folder string) (string, error) {
	params := uploader.UploadParams{
		Folder:         u.root + "/" + folder,
		Transformation: "c_limit,w_1200,h_1200,q_auto",
	}
	if folder == FolderAvatars {
		params.Transformation = "c_limit,w_400,h_400,q_auto"
	}

	res, err := u.cld.Upload.Upload(ctx, bytes.NewReader(img.Data), params)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperr.Internal("Failed to upload image", err)
	}
	if res.Error.Message != "" {
		return "", apperr.Internal("Failed to upload image", fmt.Errorf("cloudinary: %s", res.Error.Message))
	}
	return res.SecureURL, nil
}

// Disabled rejects every upload; it is used when no image host is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, *Image, string) (string, error) {
	return "", apperr.Unavailable("Image uploads are not configured", nil)
}

// DefaultAvatar is the generated avatar for users who register without a
// picture.
func DefaultAvatar(firstName string) string {
	initial := "?"
	if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(firstName)); r != utf8.RuneError {
		initial = string(unicode.ToUpper(r))
	}
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(initial) +
		"&background=random&color=random&rounded=true&bold=true"
}
