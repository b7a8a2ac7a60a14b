// Package servicestest provides in-memory mail and image storage doubles.
package servicestest

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sync"
	"testing"

	"blogapi/internal/models"

	"github.com/stretchr/testify/require"
)

type Mail struct {
	To, Subject, HTML string
}

// Mailer records every message instead of delivering it.
type Mailer struct {
	mu   sync.Mutex
	sent []Mail
}

func (m *Mailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, Mail{To: to, Subject: subject, HTML: html})
	return nil
}

func (m *Mailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *Mailer) Last(t *testing.T) Mail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no email sent")
	return m.sent[len(m.sent)-1]
}

var (
	VerifyLink = regexp.MustCompile(`/users/(\d+)/verify/([0-9a-f]{64})`)
	ResetLink  = regexp.MustCompile(`/reset-password/(\d+)/([0-9a-f]{64})`)
)

// LinkToken extracts the token from the first link matching re.
func LinkToken(t *testing.T, re *regexp.Regexp, html string) string {
	t.Helper()
	m := re.FindStringSubmatch(html)
	require.Len(t, m, 3, "link not found in %q", html)
	return m[2]
}

// Storage keeps uploaded images in memory.
type Storage struct {
	mu      sync.Mutex
	seq     int
	objects map[string][]byte
	removed []string
	// FailUpload makes every Upload fail.
	FailUpload bool
}

func NewStorage() *Storage {
	return &Storage{objects: map[string][]byte{}}
}

func (s *Storage) Upload(_ context.Context, body io.Reader, _ int64, _, filename string) (models.Image, error) {
	if s.FailUpload {
		return models.Image{}, fmt.Errorf("upload %s: storage unavailable", filename)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return models.Image{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	key := fmt.Sprintf("images/%d-%s", s.seq, filename)
	s.objects[key] = data
	return models.Image{URL: "https://cdn.test/" + key, PublicID: key}, nil
}

func (s *Storage) Remove(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, publicID)
	s.removed = append(s.removed, publicID)
	return nil
}

func (s *Storage) RemoveMany(ctx context.Context, publicIDs []string) error {
	for _, id := range publicIDs {
		if id == "" {
			continue
		}
		if err := s.Remove(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) Has(publicID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[publicID]
	return ok
}

func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *Storage) Removed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.removed...)
}
