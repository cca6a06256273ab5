package req

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/xy-planning-network/trailhead"
)

// Upload error codes, in the convention web servers report them.
const (
	UploadErrOK        = 0
	UploadErrIniSize   = 1
	UploadErrFormSize  = 2
	UploadErrPartial   = 3
	UploadErrNoFile    = 4
	UploadErrNoTmpDir  = 6
	UploadErrCantWrite = 7
	UploadErrExtension = 8
)

// An Upload describes the file or files submitted under one form field.
//
// A single-file Upload (Multi false) carries exactly one element in each slice.
// A multi-file Upload (Multi true) carries parallel slices of equal length.
type Upload struct {
	Name    []string
	Type    []string
	Size    []int64
	TmpName []string
	Error   []int
	Multi   bool
}

// Uploads maps form field names to their Upload.
type Uploads map[string]Upload

// A File is one file of an Upload.
type File struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Size    int64  `json:"size"`
	TmpName string `json:"tmp_name,omitempty"`
	Error   int    `json:"error"`
}

// SingleUpload builds the single-file shape.
func SingleUpload(f File) Upload {
	return Upload{
		Name:    []string{f.Name},
		Type:    []string{f.Type},
		Size:    []int64{f.Size},
		TmpName: []string{f.TmpName},
		Error:   []int{f.Error},
	}
}

// MultiUpload builds the multi-file shape, even from a single file.
func MultiUpload(files ...File) Upload {
	u := Upload{
		Name:    make([]string, 0, len(files)),
		Type:    make([]string, 0, len(files)),
		Size:    make([]int64, 0, len(files)),
		TmpName: make([]string, 0, len(files)),
		Error:   make([]int, 0, len(files)),
		Multi:   true,
	}

	for _, f := range files {
		u.Name = append(u.Name, f.Name)
		u.Type = append(u.Type, f.Type)
		u.Size = append(u.Size, f.Size)
		u.TmpName = append(u.TmpName, f.TmpName)
		u.Error = append(u.Error, f.Error)
	}

	return u
}

// Len reports how many files u describes.
func (u Upload) Len() int { return len(u.Name) }

// Files lists the files u describes.
// It assumes u is well formed; call Validate first for untrusted descriptors.
func (u Upload) Files() []File {
	files := make([]File, len(u.Name))
	for i := range files {
		files[i] = File{Name: u.Name[i]}
		if i < len(u.Type) {
			files[i].Type = u.Type[i]
		}
		if i < len(u.Size) {
			files[i].Size = u.Size[i]
		}
		if i < len(u.TmpName) {
			files[i].TmpName = u.TmpName[i]
		}
		if i < len(u.Error) {
			files[i].Error = u.Error[i]
		}
	}

	return files
}

// Validate checks u keeps its shape: one element per slice when single,
// equal lengths when multi.
func (u Upload) Validate() error {
	lens := []int{len(u.Name), len(u.Type), len(u.Size), len(u.TmpName), len(u.Error)}

	if !u.Multi {
		for _, l := range lens {
			if l != 1 {
				return fmt.Errorf("%w: single upload has %d entries", trailhead.ErrMalformedUpload, l)
			}
		}

		return nil
	}

	for _, l := range lens[1:] {
		if l != lens[0] {
			return fmt.Errorf("%w: multi upload has %d names but %d entries", trailhead.ErrMalformedUpload, lens[0], l)
		}
	}

	return nil
}

// MarshalJSON renders scalars for a single-file Upload and arrays for a multi-file one.
// tmp_name is left out when no file of u has a temporary location.
func (u Upload) MarshalJSON() ([]byte, error) {
	if u.Multi {
		tmp := u.TmpName
		if !slices.ContainsFunc(tmp, func(s string) bool { return s != "" }) {
			tmp = nil
		}

		return json.Marshal(struct {
			Name    []string `json:"name"`
			Type    []string `json:"type"`
			Size    []int64  `json:"size"`
			TmpName []string `json:"tmp_name,omitempty"`
			Error   []int    `json:"error"`
		}{u.Name, u.Type, u.Size, tmp, u.Error})
	}

	files := u.Files()
	if len(files) == 0 {
		return json.Marshal(File{})
	}

	return json.Marshal(files[0])
}
