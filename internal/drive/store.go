package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"google.golang.org/api/drive/v3"

	"github.com/sstent/stravasync/internal/export"
)

// Store persists the export document as a single Drive file, overwritten
// wholesale on every save. When localPath is set, each save also writes a
// local copy before touching the remote.
type Store struct {
	svc       *drive.Service
	localPath string
	logger    *slog.Logger
}

// NewStore wraps an authenticated Drive service. localPath may be empty to
// skip the local copy.
func NewStore(svc *drive.Service, localPath string, logger *slog.Logger) *Store {
	return &Store{
		svc:       svc,
		localPath: localPath,
		logger:    logger,
	}
}

// Load fetches the document blob named name. It returns (nil, nil) when
// the file is absent or its content does not parse as a current-schema
// document; both mean "start fresh". Transport failures are real errors.
func (s *Store) Load(ctx context.Context, name string) (*export.Document, error) {
	fileID, err := s.findFile(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %q in drive: %w", name, err)
	}
	if fileID == "" {
		s.logger.Info("no previous export found in drive", "name", name)
		return nil, nil
	}

	resp, err := s.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download %q: %w", name, err)
	}
	defer resp.Body.Close()

	var doc export.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		s.logger.Warn("stored export is not a valid document, starting fresh",
			"name", name, "error", err)
		return nil, nil
	}
	if doc.Metadata.SchemaVersion != export.SchemaVersion {
		s.logger.Warn("stored export has an unsupported schema version, starting fresh",
			"name", name, "schema_version", doc.Metadata.SchemaVersion)
		return nil, nil
	}

	return &doc, nil
}

// Save overwrites (or creates) the blob named name with the serialized
// document. Drive distinguishes create from update, so the file is looked
// up first to pick the right call.
func (s *Store) Save(ctx context.Context, name string, doc *export.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	if s.localPath != "" {
		if err := s.writeLocal(data); err != nil {
			return err
		}
	}

	fileID, err := s.findFile(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to look up %q in drive: %w", name, err)
	}

	if fileID != "" {
		_, err = s.svc.Files.Update(fileID, &drive.File{}).
			Media(bytes.NewReader(data)).
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to update %q in drive: %w", name, err)
		}
		s.logger.Info("updated export in drive", "name", name, "file_id", fileID)
		return nil
	}

	_, err = s.svc.Files.Create(&drive.File{Name: name, MimeType: "application/json"}).
		Media(bytes.NewReader(data)).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to create %q in drive: %w", name, err)
	}
	s.logger.Info("created export in drive", "name", name)
	return nil
}

func (s *Store) writeLocal(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.localPath), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(s.localPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write local export %s: %w", s.localPath, err)
	}
	s.logger.Info("wrote local export", "path", s.localPath)
	return nil
}

// findFile returns the id of the newest non-trashed file named name, or ""
// when none exists.
func (s *Store) findFile(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf("name='%s' and trashed=false", name)
	list, err := s.svc.Files.List().
		Q(query).
		Spaces("drive").
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}
