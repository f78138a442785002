package rest

import "net/http"

type uploadURLResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func (s *Server) photoUploadURL(w http.ResponseWriter, r *http.Request) {
	key, url, err := s.photos.UploadURL(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadURLResponse{Key: key, URL: url})
}
