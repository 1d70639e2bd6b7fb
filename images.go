package gamenews

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 82

// errImageTooLarge and errNotAnImage are reported to the editor as form errors.
var (
	errImageTooLarge = errors.New("image is too large")
	errNotAnImage    = errors.New("only JPEG, PNG, GIF and WebP images are allowed")
)

// Image describes an upload written to the upload directory.
type Image struct {
	Filename string
	Width    int
	Height   int
	Size     int
}

// processImage decodes an image from src, scales it down to maxWidth when
// wider, and encodes it as JPEG. Returns metadata and the encoded bytes.
func processImage(src io.Reader, originalName string, maxWidth int) (Image, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Image{}, nil, fmt.Errorf("%w: %v", errNotAnImage, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if maxWidth > 0 && w > maxWidth {
		newH := max(h*maxWidth/w, 1)
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	name := slugifyFilename(originalName)
	if name == "" {
		name = "image"
	}

	return Image{
		Filename: name + ".jpg",
		Width:    w,
		Height:   h,
		Size:     buf.Len(),
	}, buf.Bytes(), nil
}

// readUpload checks the size of an uploaded file and runs it through processImage.
func (a *App) readUpload(fh *multipart.FileHeader) (Image, []byte, error) {
	if fh.Size > a.Config.MaxUploadSize {
		return Image{}, nil, fmt.Errorf("%w (max %dMB)", errImageTooLarge, a.Config.MaxUploadSize>>20)
	}
	src, err := fh.Open()
	if err != nil {
		return Image{}, nil, err
	}
	defer src.Close()
	return processImage(io.LimitReader(src, a.Config.MaxUploadSize+1), fh.Filename, a.Config.MaxImageWidth)
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return Slugify(base)
}

// ensureUniqueFilename appends a counter if filename already exists in dir.
func ensureUniqueFilename(dir string, img *Image) {
	base := strings.TrimSuffix(img.Filename, ".jpg")
	candidate := img.Filename
	for counter := 2; ; counter++ {
		if _, err := os.Stat(filepath.Join(dir, candidate)); err != nil {
			break
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
	img.Filename = candidate
}

type uploadResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url,omitempty"`
	Filename string `json:"filename,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Error    string `json:"error,omitempty"`
}

// handleUploadImage stores an editor image on disk and returns its public
// URL for insertion into the Markdown body.
func (a *App) handleUploadImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{Error: "No image file provided"})
	}

	img, data, err := a.readUpload(file)
	if err != nil {
		if errors.Is(err, errImageTooLarge) || errors.Is(err, errNotAnImage) {
			return c.JSON(http.StatusBadRequest, uploadResponse{Error: err.Error()})
		}
		return err
	}

	dir := a.Config.UploadDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	ensureUniqueFilename(dir, &img)
	if err := os.WriteFile(filepath.Join(dir, img.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	c.Logger().Infof("uploaded %s (%dx%d, %d bytes)", img.Filename, img.Width, img.Height, img.Size)

	return c.JSON(http.StatusOK, uploadResponse{
		Success:  true,
		URL:      "/uploads/" + img.Filename,
		Filename: img.Filename,
		Width:    img.Width,
		Height:   img.Height,
	})
}
