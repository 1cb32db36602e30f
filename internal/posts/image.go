package posts

import (
	"bytes"
	"path/filepath"
	"strings"

	"campus_lostfound/internal/client"
	"campus_lostfound/pkg/errorx"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// ImageOptions 上传前的图片处理参数
type ImageOptions struct {
	MaxDimension int   // 长边上限（像素）
	MaxBytes     int64 // 处理后的体积上限
}

// allowedImageTypes 可上传的图片类型
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// PrepareImage 识别图片类型，按 EXIF 方向摆正，缩放到长边不超过上限后重新编码
// PNG 保持 PNG，其余统一转为 JPEG
func PrepareImage(filename string, data []byte, opts ImageOptions) (*client.Upload, error) {
	if len(data) == 0 {
		return nil, errorx.New(errorx.CodeInvalidParam, "The selected image is empty.")
	}
	mtype := mimetype.Detect(data)
	if !allowedImageTypes[mtype.String()] {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "Unsupported image type %s. Only JPG, PNG and GIF are allowed.", mtype.String())
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "The selected image could not be read.")
	}
	if opts.MaxDimension > 0 {
		b := img.Bounds()
		if b.Dx() > opts.MaxDimension || b.Dy() > opts.MaxDimension {
			img = imaging.Fit(img, opts.MaxDimension, opts.MaxDimension, imaging.Lanczos)
		}
	}

	var out bytes.Buffer
	upload := &client.Upload{}
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" || base == "." {
		base = "image"
	}
	if mtype.Is("image/png") {
		err = imaging.Encode(&out, img, imaging.PNG)
		upload.Filename, upload.ContentType = base+".png", "image/png"
	} else {
		err = imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(85))
		upload.Filename, upload.ContentType = base+".jpg", "image/jpeg"
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "The selected image could not be processed.")
	}
	if opts.MaxBytes > 0 && int64(out.Len()) > opts.MaxBytes {
		return nil, errorx.New(errorx.CodeInvalidParam, "The selected image is too large.")
	}
	upload.Data = out.Bytes()
	return upload, nil
}
