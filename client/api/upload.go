package api

import (
	"path/filepath"

	json "github.com/json-iterator/go"

	"github.com/quillhub/quillhub/client/transport"
)

// UploadPictures uploads image files and returns their public links
func UploadPictures(paths []string) ([]string, error) {
	req := transport.GetClient().R()
	for _, path := range paths {
		req.SetFile("files", filepath.Clean(path))
	}

	resp, err := req.Post("/api/upload")
	if err != nil {
		return nil, err
	}

	var env transport.Envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &transport.APIError{StatusCode: resp.StatusCode(), Message: env.Message}
	}

	var data struct {
		Links []string `json:"links"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, err
	}
	return data.Links, nil
}

// DeletePicture removes an uploaded picture by link
func DeletePicture(link string) error {
	return transport.Do(transport.Request{
		Method: "DELETE",
		Path:   "/api/upload",
		Query:  map[string]string{"link": link},
	})
}
