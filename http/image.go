package http

import (
	"errors"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"yatube/domain"
	"yatube/forms"
)

// registerMediaRoutes serves uploaded images from mediaRoot. Directories are not listed.
func (s *Server) registerMediaRoutes(r *mux.Router, mediaRoot string) {
	if mediaRoot == "" {
		return
	}
	files := http.StripPrefix("/media/", http.FileServer(filesOnly{http.Dir(mediaRoot)}))
	r.PathPrefix("/media/").Handler(files).Methods("GET", "HEAD")
}

// filesOnly is a http.FileSystem that pretends directories don't exist.
type filesOnly struct {
	fs http.FileSystem
}

func (fo filesOnly) Open(name string) (http.File, error) {
	f, err := fo.fs.Open(name)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if stat.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

// maxFormSize bounds the body of a post form: one image plus the text fields.
const maxFormSize = domain.MaxUploadSize + 1<<20

// parsePostForm reads a submitted post form, which may or may not be multipart.
// The returned function closes the uploaded file and must always be called.
// A body that is too large, or can't be parsed at all, is reported as FieldErrors.
func parsePostForm(w http.ResponseWriter, r *http.Request) (forms.PostInput, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)

	// Parse the data to be uploaded.
	err := r.ParseMultipartForm(domain.MaxUploadSize)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		fe := forms.FieldErrors{}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fe.Add("image", "The submitted image exceeds the upload size limit of 5MB.")
		} else {
			fe.Add("", "The submitted form could not be read.")
		}
		return forms.PostInput{}, noop, fe
	}

	in := forms.PostInput{
		Text:       r.PostFormValue("text"),
		Group:      r.PostFormValue("group"),
		ClearImage: r.PostFormValue("image-clear") != "",
	}

	// Open the image, if there is one.
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return in, noop, nil
	}
	if err != nil {
		return in, noop, err
	}
	in.Image = &forms.Upload{File: file, Filename: header.Filename}
	return in, closer(file), nil
}

func closer(file multipart.File) func() {
	return func() { _ = file.Close() }
}
