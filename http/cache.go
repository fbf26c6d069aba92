package http

import (
	"bytes"
	"net/http"

	"go.uber.org/zap"
)

// bufferedResponse collects a response instead of sending it, so that it can be cached.
type bufferedResponse struct {
	w      http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (b *bufferedResponse) Header() http.Header {
	return b.w.Header()
}

func (b *bufferedResponse) WriteHeader(status int) {
	b.status = status
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

// cachePage serves GET requests from the page cache. The key is the request's
// path plus raw query, so every page of a listing is cached separately. Only 200
// responses are stored. Entries are never invalidated by writes; they live until
// their TTL runs out or the cache is cleared.
func (s *Server) cachePage(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || s.pages == nil || s.cacheTTL <= 0 {
			next(w, r)
			return
		}
		ctx := r.Context()
		key := r.URL.RequestURI()

		body, ok, err := s.pages.Get(ctx, key)
		if err != nil {
			s.logger.Warn("page cache unavailable", zap.String("key", key), zap.Error(err))
		}
		if ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}

		buf := &bufferedResponse{w: w, status: http.StatusOK}
		next(buf, r)
		w.WriteHeader(buf.status)
		_, _ = w.Write(buf.body.Bytes())

		if buf.status == http.StatusOK {
			if err := s.pages.Set(ctx, key, buf.body.Bytes(), s.cacheTTL); err != nil {
				s.logger.Warn("err caching page", zap.String("key", key), zap.Error(err))
			}
		}
	}
}
