package payment

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/blake2b"
)

// ReceiptField is the form field carrying the receipt file.
const ReceiptField = "receipt"

const DefaultMaxReceiptBytes = 5 << 20

var AllowedReceiptTypes = []string{"image/png", "image/jpeg", "application/pdf"}

var ErrReceiptTooLarge = errors.New("payment: receipt exceeds size limit")

// formOverhead allows for multipart boundaries, part headers and small
// fields on top of the receipt itself.
const formOverhead = 64 << 10

// Receipt is a fully read receipt upload.
type Receipt struct {
	Filename    string `json:"receipt" validate:"required"`
	ContentType string `json:"content_type" validate:"required,oneof=image/png image/jpeg application/pdf"`
	Size        int64  `json:"size" validate:"gt=0"`
	Data        []byte `json:"-"`
}

// ReceiptUpload is a manual payment submission.
type ReceiptUpload struct {
	UserID   string   `json:"user_id" validate:"required"`
	CourseID uint     `json:"course_id" validate:"required"`
	Receipt  *Receipt `json:"receipt" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names, not Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ReadReceipt reads at most max bytes from r and sniffs the content type.
// An empty filename or body yields a Receipt that fails validation.
func ReadReceipt(r io.Reader, filename string, max int64) (*Receipt, error) {
	if max <= 0 {
		max = DefaultMaxReceiptBytes
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("read receipt: %w", err)
	}
	if n > max {
		return nil, ErrReceiptTooLarge
	}
	rc := &Receipt{Filename: filename, Size: n, Data: buf.Bytes()}
	if n > 0 {
		rc.ContentType = strings.SplitN(http.DetectContentType(rc.Data), ";", 2)[0]
	}
	return rc, nil
}

// Validate returns field -> message for every violated rule, or nil.
func (u ReceiptUpload) Validate() map[string]string {
	if u.Receipt == nil {
		return map[string]string{ReceiptField: "this field is required"}
	}
	if u.Receipt.Filename == "" && u.Receipt.Size == 0 {
		// nothing was selected; report the form field once
		return map[string]string{ReceiptField: "this field is required"}
	}
	err := validate.Struct(u)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{ReceiptField: err.Error()}
	}
	fields := map[string]string{}
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "oneof":
		return "unsupported file type; upload a PNG, JPEG or PDF"
	case "gt":
		return "the file is empty"
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}

// Digest fingerprints receipt contents for duplicate detection.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Extension returns the file extension used when storing a receipt of
// the given content type.
func Extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "application/pdf":
		return ".pdf"
	}
	return ""
}

// ReceiptFromForm reads the receipt part of a multipart request. The body is
// capped before parsing so an oversized upload is cut off rather than
// spooled to disk. A missing part yields nil and no error so Validate
// reports it as required.
func ReceiptFromForm(w http.ResponseWriter, r *http.Request, max int64) (*Receipt, error) {
	if max <= 0 {
		max = DefaultMaxReceiptBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, max+formOverhead)
	if err := r.ParseMultipartForm(max); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrReceiptTooLarge
		}
		return nil, fmt.Errorf("parse receipt form: %w", err)
	}
	f, h, err := r.FormFile(ReceiptField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open receipt: %w", err)
	}
	defer f.Close()
	return ReadReceipt(f, h.Filename, max)
}
