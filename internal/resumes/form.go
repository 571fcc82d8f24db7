package resumes

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Multipart field names of the upload form.
const (
	FieldCompanyName    = "company-name"
	FieldJobTitle       = "job-title"
	FieldJobDescription = "job-description"
	FieldFile           = "file"
)

const maxFormBytes = MaxFileBytes + 1<<20

// InputFromForm reads a submission from a multipart request.
func InputFromForm(c *gin.Context) (Input, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFormBytes)

	in := Input{
		CompanyName:    c.PostForm(FieldCompanyName),
		JobTitle:       c.PostForm(FieldJobTitle),
		JobDescription: c.PostForm(FieldJobDescription),
	}

	fileHeader, err := c.FormFile(FieldFile)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, fmt.Errorf("%w: file exceeds %d MB", ErrInvalidInput, MaxFileBytes>>20)
		}
		return in, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	if fileHeader.Size > MaxFileBytes {
		return in, fmt.Errorf("%w: file exceeds %d MB", ErrInvalidInput, MaxFileBytes>>20)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return in, fmt.Errorf("%w: unable to read file", ErrInvalidInput)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxFileBytes+1))
	if err != nil {
		return in, fmt.Errorf("%w: unable to read file", ErrInvalidInput)
	}
	in.FileName = fileHeader.Filename
	in.Data = data
	return in, nil
}
