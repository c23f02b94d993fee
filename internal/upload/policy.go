package upload

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrTooManyFiles    = errors.New("too many files")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidContext  = errors.New("invalid asset context")
)

// Kind is what a picker accepts
type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
)

// documentExtensions are the accepted document formats
var documentExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true, ".txt": true,
}

// Policy is the gate a batch of picked files must pass
type Policy struct {
	Kind      Kind `json:"kind" yaml:"kind"`
	Multiple  bool `json:"multiple" yaml:"multiple"`
	MaxFiles  int  `json:"maxFiles" yaml:"max_files"`
	MaxSizeMB int  `json:"maxSizeMb" yaml:"max_size_mb"`
}

// ImagePolicy is the image picker default: up to 10 files of 5MB
func ImagePolicy(multiple bool) Policy {
	return Policy{Kind: KindImage, Multiple: multiple, MaxFiles: 10, MaxSizeMB: 5}
}

// DocumentPolicy is the document picker default: up to 5 files of 10MB
func DocumentPolicy(multiple bool) Policy {
	return Policy{Kind: KindDocument, Multiple: multiple, MaxFiles: 5, MaxSizeMB: 10}
}

// File is one picked file
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size in bytes
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// RejectError names the constraint a batch failed. Nothing of a rejected
// batch is uploaded.
type RejectError struct {
	Message string
	Err     error
}

func (e *RejectError) Error() string {
	return e.Message
}

func (e *RejectError) Unwrap() error {
	return e.Err
}

func (p Policy) noun() string {
	if p.Kind == KindDocument {
		return "document"
	}
	return "image"
}

// Check gates a batch in order: count, then size, then type. existing is
// the number of files the field already holds.
func Check(p Policy, existing int, files []File) error {
	if len(files) == 0 {
		return nil
	}

	noun := p.noun()
	if p.Multiple && p.MaxFiles > 0 && existing+len(files) > p.MaxFiles {
		return &RejectError{Message: fmt.Sprintf("Maximum %d %ss allowed", p.MaxFiles, noun), Err: ErrTooManyFiles}
	}
	if !p.Multiple && len(files) > 1 {
		return &RejectError{Message: fmt.Sprintf("Only one %s allowed", noun), Err: ErrTooManyFiles}
	}

	limit := int64(p.MaxSizeMB) * 1024 * 1024
	for _, f := range files {
		if limit > 0 && f.Size() > limit {
			return &RejectError{
				Message: fmt.Sprintf("%ss must be less than %dMB", strings.ToUpper(noun[:1])+noun[1:], p.MaxSizeMB),
				Err:     ErrFileTooLarge,
			}
		}
	}

	for _, f := range files {
		if !p.accepts(f) {
			msg := "Only image files are allowed"
			if p.Kind == KindDocument {
				msg = "Only PDF, Word, Excel and text documents are allowed"
			}
			return &RejectError{Message: msg, Err: ErrUnsupportedType}
		}
	}
	return nil
}

// accepts checks the declared content type, sniffing the bytes when none
// was declared
func (p Policy) accepts(f File) bool {
	if p.Kind == KindDocument {
		if documentExtensions[strings.ToLower(filepath.Ext(f.Name))] {
			return true
		}
		return documentExtensions[mimetype.Detect(f.Data).Extension()]
	}
	return strings.HasPrefix(ContentType(f), "image/")
}

// ContentType returns the declared type, or the sniffed one
func ContentType(f File) string {
	ct := f.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ct = mimetype.Detect(f.Data).String()
	}
	return ct
}
