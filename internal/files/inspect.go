package files

import (
	"bytes"
	"fmt"

	"github.com/jonathan/resume-upload/internal/types"
	"github.com/ledongthuc/pdf"
)

// Info summarizes a selected file for display before upload.
type Info struct {
	Name      string
	MimeType  string
	Size      int64
	IsPDF     bool
	PageCount int
}

// Inspect opens file as a PDF and reports its page count. Files that do not
// carry the PDF signature are described without error; a file that claims to
// be a PDF but cannot be opened returns an *Error.
func Inspect(file *types.SelectedFile) (info *Info, err error) {
	if file == nil {
		return nil, &Error{Message: "no file selected"}
	}

	info = &Info{
		Name:     file.Name,
		MimeType: file.MimeType,
		Size:     file.Size(),
		IsPDF:    IsPDF(file.Content),
	}
	if !info.IsPDF {
		return info, nil
	}

	// The pdf reader panics on some truncated inputs.
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, &Error{Path: file.Name, Message: fmt.Sprintf("failed to open PDF: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(file.Content), file.Size())
	if err != nil {
		return nil, &Error{Path: file.Name, Message: "failed to open PDF", Cause: err}
	}
	info.PageCount = reader.NumPage()
	if info.PageCount == 0 {
		return nil, &Error{Path: file.Name, Message: "PDF has no pages"}
	}

	return info, nil
}
