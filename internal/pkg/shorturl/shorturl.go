package shorturl

import (
	"fmt"
	"strings"

	"github.com/synchub/synchub/internal/hub/model"
	"github.com/synchub/synchub/internal/hub/repo"
	"github.com/synchub/synchub/pkg/id"
)

// Shortener maps long callback URLs to short redirect links under the hub's
// own base URL. The same long URL always resolves to the same short id.
type Shortener struct {
	urls    repo.IShortURLRepository
	baseURL string
}

func NewShortener(urls repo.IShortURLRepository, baseURL string) *Shortener {
	return &Shortener{urls: urls, baseURL: strings.TrimRight(baseURL, "/")}
}

// Shorten returns the absolute short link for the long URL, reusing the
// stored id when one exists.
func (s *Shortener) Shorten(longURL string) (string, error) {
	existing, err := s.urls.FindByURL(longURL)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return s.link(existing.ShortID), nil
	}
	shortID := id.ShortId()
	if shortID == "" {
		return "", fmt.Errorf("generating short id for %s", longURL)
	}
	if err := s.urls.Create(&model.ShortURL{ShortID: shortID, URL: longURL}); err != nil {
		return "", err
	}
	return s.link(shortID), nil
}

func (s *Shortener) link(shortID string) string {
	return s.baseURL + "/u/" + shortID
}
